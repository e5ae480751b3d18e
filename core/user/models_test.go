package user

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/ogunkayacan/lisans/core"
)

func TestNewUserValidate(t *testing.T) {
	validate, _ := core.NewValidator()
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	if _, err := svc.Create(context.Background(), NewUser{Username: "taken", Role: RoleTeacher, Password: "s3cret"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tests := []struct {
		name    string
		nu      NewUser
		wantErr bool
	}{
		{
			name: "ok",
			nu:   NewUser{Username: "awe", FullName: "Awe Awe", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"},
		},
		{
			name: "input is cleaned",
			nu:   NewUser{Username: " AWE2 ", FullName: " Awe Awe ", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"},
		},
		{
			name:    "missing fields",
			nu:      NewUser{},
			wantErr: true,
		},
		{
			name:    "short username",
			nu:      NewUser{Username: "ab", FullName: "Ab", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"},
			wantErr: true,
		},
		{
			name:    "unknown role",
			nu:      NewUser{Username: "awe3", FullName: "Awe", Role: "principal", Password: "s3cret", PasswordConfirm: "s3cret"},
			wantErr: true,
		},
		{
			name:    "password mismatch",
			nu:      NewUser{Username: "awe4", FullName: "Awe", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "lol"},
			wantErr: true,
		},
		{
			name:    "bad email",
			nu:      NewUser{Username: "awe5", FullName: "Awe", Email: "lol", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"},
			wantErr: true,
		},
		{
			name:    "username taken",
			nu:      NewUser{Username: "taken", FullName: "Awe", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate, svc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewUserValidateCleansInput(t *testing.T) {
	validate, _ := core.NewValidator()
	svc := NewService(newFakeRepo(), nil)

	nu := NewUser{Username: " AWE ", FullName: "  Awe Awe ", Email: " AWE@KBOA.EDU ", Role: RoleStudent, Password: "s3cret", PasswordConfirm: "s3cret"}
	if err := nu.Validate(validate, svc); err != nil {
		t.Fatalf("Validate(): %v", err)
	}
	if nu.Username != "awe" {
		t.Errorf("username = %q, want %q", nu.Username, "awe")
	}
	if nu.FullName != "Awe Awe" {
		t.Errorf("fullName = %q, want %q", nu.FullName, "Awe Awe")
	}
	if nu.Email != "awe@kboa.edu" {
		t.Errorf("email = %q, want %q", nu.Email, "awe@kboa.edu")
	}
}

func TestUpdateUserValidate(t *testing.T) {
	validate, _ := core.NewValidator()
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	usr, err := svc.Create(ctx, NewUser{Username: "awe", Email: "awe@kboa.edu", Role: RoleTeacher, Password: "s3cret"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if _, err := svc.Create(ctx, NewUser{Username: "taken", Role: RoleTeacher, Password: "s3cret"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	t.Run("empty update is fine", func(t *testing.T) {
		uu := UpdateUser{}
		if err := uu.Validate(validate, svc, usr); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("own username is not a clash", func(t *testing.T) {
		uu := UpdateUser{Username: "awe", Email: "awe@kboa.edu"}
		if err := uu.Validate(validate, svc, usr); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("clashing username", func(t *testing.T) {
		uu := UpdateUser{Username: "taken"}
		err := uu.Validate(validate, svc, usr)
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Validate() error = %v, want ValidationError", err)
		}
	})

	t.Run("password confirm required", func(t *testing.T) {
		uu := UpdateUser{Password: "n3wpwd"}
		err := uu.Validate(validate, svc, usr)
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			t.Fatalf("Validate() error = %v, want ValidationErrors", err)
		}
	})
}

func TestQueryFilterClean(t *testing.T) {
	f := QueryFilter{Search: "  AWE ", Role: " Teacher ", Class: " 8-A "}
	f.Clean()
	if f.Search != "awe" || f.Role != "teacher" || f.Class != "8-A" {
		t.Errorf("Clean() = %+v", f)
	}
}
