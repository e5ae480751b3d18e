package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ogunkayacan/lisans/core"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]User // keyed by ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]User)}
}

func (r *fakeRepo) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := func(usr User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}
	for _, usr := range r.users {
		if excluded(usr) {
			continue
		}
		if usr.Username == username {
			return ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateUser(_ context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepo) QueryAllUsers(_ context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, usr)
	}
	return users, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByUsername(ctx context.Context, username string) (User, error) {
	all, _ := r.QueryAllUsers(ctx)
	for _, usr := range all {
		if usr.Username == username {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error) {
	all, _ := r.QueryAllUsers(ctx)
	for _, usr := range all {
		if usr.Username == username || (usr.Email != "" && usr.Email == username) {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error) {
	all, _ := r.QueryAllUsers(ctx)
	users := make([]User, 0, len(all))
	for _, usr := range all {
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.Class != "" && usr.Class != filter.Class {
			continue
		}
		users = append(users, usr)
	}
	return users, nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, usr User, isActive *bool) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	curr, ok := r.users[usr.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	if usr.Username != "" {
		curr.Username = usr.Username
	}
	if usr.FullName != "" {
		curr.FullName = usr.FullName
	}
	if usr.Email != "" {
		curr.Email = usr.Email
	}
	if usr.Class != "" {
		curr.Class = usr.Class
	}
	if usr.Role != "" {
		curr.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		curr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		curr.SetActive(*isActive)
	}
	curr.UpdatedAt = usr.UpdatedAt
	r.users[usr.ID] = curr
	return curr, nil
}

func (r *fakeRepo) UpdateOrCreateUser(ctx context.Context, usr User) (User, error) {
	if curr, err := r.GetUserByUsername(ctx, usr.Username); err == nil {
		usr.ID = curr.ID
		return r.UpdateUser(ctx, usr, usr.IsActive)
	}
	return r.CreateUser(ctx, usr)
}

func (r *fakeRepo) SetLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	usr.LastLogin = t
	r.users[id] = usr
	return nil
}

func (r *fakeRepo) DeleteUsersByID(_ context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

func TestServiceCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	usr, err := svc.Create(context.Background(), NewUser{
		Username: "awe",
		FullName: "Awe Awe",
		Email:    "awe@kboa.edu",
		Class:    "8-A",
		Role:     RoleStudent,
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if usr.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if usr.IsActive == nil || !*usr.IsActive {
		t.Error("Create() user is not active")
	}
	if !usr.IsStudent() {
		t.Errorf("Create() role = %v, want %v", usr.Role, RoleStudent)
	}
	if err := usr.CheckPassword("s3cret"); err != nil {
		t.Error("Create() did not set the password")
	}
	if err := usr.CheckPassword("lol"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestServiceCheckUniqueness(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	usr, err := svc.Create(ctx, NewUser{Username: "awe", Email: "awe@kboa.edu", Role: RoleTeacher, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tests := []struct {
		name      string
		uname     string
		email     string
		excl      []User
		wantField string
	}{
		{name: "available", uname: "lol", email: "lol@kboa.edu"},
		{name: "username taken", uname: "awe", email: "lol@kboa.edu", wantField: "username"},
		{name: "email taken", uname: "lol", email: "awe@kboa.edu", wantField: "email"},
		{name: "self excluded", uname: "awe", email: "awe@kboa.edu", excl: []User{usr}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(tt.uname, tt.email, tt.excl...)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("CheckUniqueness() = %v, want nil", err)
				}
				return
			}
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("CheckUniqueness() = %v, want ValidationError", err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != tt.wantField {
				t.Errorf("CheckUniqueness() fields = %+v, want %s field error", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestServiceUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	usr, err := svc.Create(ctx, NewUser{Username: "awe", Role: RoleTeacher, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	deactivate := false
	updated, err := svc.Update(ctx, usr.ID, UpdateUser{FullName: "Awe Awe", Password: "n3w", IsActive: &deactivate})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if updated.FullName != "Awe Awe" {
		t.Errorf("Update() fullName = %v, want Awe Awe", updated.FullName)
	}
	if updated.IsActive == nil || *updated.IsActive {
		t.Error("Update() did not deactivate the user")
	}
	if err := updated.CheckPassword("n3w"); err != nil {
		t.Error("Update() did not change the password")
	}
	if updated.UpdatedAt.Before(usr.UpdatedAt) {
		t.Error("Update() did not refresh UpdatedAt")
	}

	if _, err = svc.Update(ctx, "lol", UpdateUser{FullName: "x"}); err != ErrNotFound {
		t.Errorf("Update() unknown user error = %v, want ErrNotFound", err)
	}
}

func TestServiceSetLastLoginAndDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	usr, err := svc.Create(ctx, NewUser{Username: "awe", Role: RoleAdmin, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	usr, err = svc.SetLastLogin(ctx, usr)
	if err != nil {
		t.Fatalf("SetLastLogin(): %v", err)
	}
	if usr.LastLogin.IsZero() {
		t.Error("SetLastLogin() did not set LastLogin")
	}

	if err = svc.Delete(ctx, usr.ID); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if _, err = svc.GetByID(ctx, usr.ID); err != ErrNotFound {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}
}
