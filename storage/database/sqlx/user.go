package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/user"
)

// oldest first
var userOrdering = core.DBOrdering{Field: "created_at", Ascending: true}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// dbUser is the users table row.
type dbUser struct {
	ID           string       `db:"id"`
	Username     string       `db:"username"`
	FullName     string       `db:"full_name"`
	Email        string       `db:"email"`
	Class        string       `db:"class"`
	Role         string       `db:"role"`
	IsActive     bool         `db:"is_active"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (repo userRepository) row(usr user.User) dbUser {
	u := dbUser{
		ID:           usr.ID,
		Username:     usr.Username,
		FullName:     usr.FullName,
		Email:        usr.Email,
		Class:        usr.Class,
		Role:         usr.Role,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
	if usr.IsActive != nil {
		u.IsActive = *usr.IsActive
	}
	return u
}

func (repo userRepository) unrow(u dbUser) user.User {
	usr := user.User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		Class:        u.Class,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
	usr.SetActive(u.IsActive)
	return usr
}

func (repo userRepository) unrowSlice(rows []dbUser) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, repo.unrow(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		exclIDs = append(exclIDs, u.ID)
	}

	var taken struct {
		Username bool `db:"username_taken"`
		Email    bool `db:"email_taken"`
	}
	err := repo.db.GetContext(ctx, &taken, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> ALL($3::uuid[])) AS username_taken,
			EXISTS(SELECT 1 FROM users WHERE email <> '' AND email = $2 AND id <> ALL($3::uuid[])) AS email_taken`,
		username, email, pq.Array(exclIDs),
	)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if taken.Username {
		return user.ErrUsernameExists
	}
	if taken.Email {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	u := repo.row(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, full_name, email, class, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :username, :full_name, :email, :class, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`,
		u,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unrow(u), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY `+userOrdering.String()); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return repo.unrow(u), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	if err := repo.db.GetContext(ctx, &u, `SELECT * FROM users WHERE username = $1`, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by username")
	}
	return repo.unrow(u), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	var u dbUser
	query := `SELECT * FROM users WHERE username = $1 OR (email <> '' AND email = $1)`
	if err := repo.db.GetContext(ctx, &u, query, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by username or email")
	}
	return repo.unrow(u), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM users WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
		query += ` AND (username ILIKE ? OR full_name ILIKE ? OR email ILIKE ?)`
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = ?`
	}
	if filter.Class != "" {
		args = append(args, filter.Class)
		query += ` AND class = ?`
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ?`
	}
	query += ` ORDER BY ` + userOrdering.String()

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	query := `UPDATE users SET updated_at = ?`
	args := []interface{}{usr.UpdatedAt.UTC()}

	if usr.Username != "" {
		args = append(args, usr.Username)
		query += `, username = ?`
	}
	if usr.FullName != "" {
		args = append(args, usr.FullName)
		query += `, full_name = ?`
	}
	if usr.Email != "" {
		args = append(args, usr.Email)
		query += `, email = ?`
	}
	if usr.Class != "" {
		args = append(args, usr.Class)
		query += `, class = ?`
	}
	if usr.Role != "" {
		args = append(args, usr.Role)
		query += `, role = ?`
	}
	if usr.PasswordHash != nil {
		args = append(args, usr.PasswordHash)
		query += `, password_hash = ?`
	}
	if isActive != nil {
		args = append(args, *isActive)
		query += `, is_active = ?`
	}
	args = append(args, usr.ID)
	query += ` WHERE id = ?`

	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	u := repo.row(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, full_name, email, class, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :username, :full_name, :email, :class, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)
		ON CONFLICT (username) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			class = EXCLUDED.class,
			role = EXCLUDED.role,
			is_active = EXCLUDED.is_active,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at`,
		u,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return repo.GetUserByUsername(ctx, usr.Username)
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	if _, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, t.UTC()); err != nil {
		return errors.Wrap(err, "setting lastLogin")
	}
	return nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building user delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
