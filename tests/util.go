package testutil

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/license"
	"github.com/ogunkayacan/lisans/core/user"
)

// Logger implements core.Logger for tests; it never reports anywhere.
type Logger struct {
	std *log.Logger
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}
}

func (l Logger) Enable(bool) {}

func (l Logger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l Logger) Debug(msg string, args ...interface{}) { l.print(msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.print(msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.print(msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.print(msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) { l.print(msg, args) }

func CreateUser(
	t *testing.T,
	repo user.Repository,
	fullName, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Username:  uname,
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateLicense(
	t *testing.T,
	repo license.Repository,
	keygen license.Keygen,
	year, month, day int,
	note string,
) license.License {
	t.Helper()

	date, err := license.NewExpiryDate(year, month, day)
	if err != nil {
		t.Fatalf("CreateLicense() failed: %v", err)
	}
	lic := license.License{
		ID:        uuid.New().String(),
		Key:       keygen.GenerateKey(date),
		Year:      date.Year,
		Month:     date.Month,
		Day:       date.Day,
		Note:      note,
		ExpiresAt: date.Time(),
		CreatedAt: time.Now().UTC(),
	}
	lic, err = repo.CreateLicense(context.Background(), lic)
	if err != nil {
		t.Fatalf("CreateLicense() failed: %v", err)
	}
	return lic
}
