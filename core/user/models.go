package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ogunkayacan/lisans/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var Roles = []string{RoleAdmin, RoleTeacher, RoleStudent}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Class        string    `json:"class"` // e.g. "8-A"; staff use their title
	Role         string    `json:"role"`
	IsActive     *bool     `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,alphanum"`
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Class           string `json:"class"`
	Role            string `json:"role" validate:"required,oneof=admin teacher student"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Class = core.CleanString(nu.Class)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Username        string `json:"username" validate:"omitempty,min=3,alphanum"`
	FullName        string `json:"full_name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Class           string `json:"class"`
	Role            string `json:"role" validate:"omitempty,oneof=admin teacher student"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty,min=6,required_with=PasswordConfirm"`
	PasswordConfirm string `json:"password_confirm" validate:"eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate, svc ServiceInterface, usr User) error {
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.FullName = core.CleanString(uu.FullName)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Class = core.CleanString(uu.Class)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Username == "" && uu.Email == "" {
		return nil
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, usr)
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of Username, FullName or Email.
	Search   string `query:"search"`
	Role     string `query:"role"`
	Class    string `query:"class"`
	IsActive *bool  `query:"is_active"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	f.Role = core.CleanString(f.Role, true /* lower */)
	f.Class = core.CleanString(f.Class)
}
