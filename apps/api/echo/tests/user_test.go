package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/ogunkayacan/lisans/apps/api/echo"
	"github.com/ogunkayacan/lisans/core/user"
	testutil "github.com/ogunkayacan/lisans/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@kboa.edu", "s3cret", user.RoleTeacher, false)

	tests := []httpTest{
		{
			name: "empty body", wantCode: http.StatusBadRequest,
			body: []byte(`{}`),
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, map[string]string{"username": "lol", "password": "s3cret"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, map[string]string{"username": "admin", "password": "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, map[string]string{"username": "gone", "password": "s3cret"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "ok with username", wantCode: http.StatusOK,
			body:  marchallObj(t, map[string]string{"username": "admin", "password": "s3cret"}),
			extra: true,
		},
		{
			name: "ok with email", wantCode: http.StatusOK,
			body:  marchallObj(t, map[string]string{"username": "admin@kboa.edu", "password": "s3cret"}),
			extra: true,
		},
		{
			name: "username is cleaned", wantCode: http.StatusOK,
			body:  marchallObj(t, map[string]string{"username": "  ADMIN ", "password": "s3cret"}),
			extra: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.extra != nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("no token returned")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	token := getToken(t, usr)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling LoginResponse failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("no token returned")
		}
	})
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@kboa.edu", "s3cret", user.RoleTeacher, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	newStudent := map[string]string{
		"username":         "student1",
		"full_name":        "Student One",
		"class":            "8-A",
		"role":             "student",
		"password":         "s3cret",
		"password_confirm": "s3cret",
	}

	tests := []httpTest{
		{
			name: "auth required", wantCode: http.StatusUnauthorized,
			body:     marchallObj(t, newStudent),
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", token: teacherToken, wantCode: http.StatusForbidden,
			body:     marchallObj(t, newStudent),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "empty body", token: adminToken, wantCode: http.StatusBadRequest,
			body: []byte(`{}`),
			wantData: marchallObj(t, map[string]string{
				"username":         "this field is required",
				"full_name":        "this field is required",
				"role":             "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "ok", token: adminToken, wantCode: http.StatusCreated,
			body:  marchallObj(t, newStudent),
			extra: true,
		},
		{
			name: "duplicate username", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, newStudent),
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.extra != nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("unmarshalling User failed: %v", err)
				}
				if usr.Username != "student1" || usr.Class != "8-A" || !usr.IsStudent() {
					t.Errorf("unexpected user: %+v", usr)
				}
				if usr.IsActive == nil || !*usr.IsActive {
					t.Error("user is not active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@kboa.edu", "s3cret", user.RoleTeacher, true)
	student := testutil.CreateUser(t, usrRepo, "Student One", "student1", "", "s3cret", user.RoleStudent, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", path: "/v1/users", token: teacherToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []interface{}{admin, teacher, student}),
		},
		{
			name: "filter by role", path: "/v1/users?role=student", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []interface{}{student}),
		},
		{
			name: "search", path: "/v1/users?search=teach", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []interface{}{teacher}),
		},
		{
			name: "no match", path: "/v1/users?search=lol", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []interface{}{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@kboa.edu", "s3cret", user.RoleTeacher, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/users/" + teacher.ID, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "own account", path: "/v1/users/" + teacher.ID, token: teacherToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, teacher),
		},
		{
			name: "other account hidden from non-admin", path: "/v1/users/" + admin.ID, token: teacherToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "admin can retrieve any", path: "/v1/users/" + teacher.ID, token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, teacher),
		},
		{
			name: "unknown id", path: "/v1/users/lol", token: adminToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_update(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@kboa.edu", "s3cret", user.RoleTeacher, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	t.Run("non-admin cannot change role", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"role": "admin"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+teacher.ID, teacherToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("own full name", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"full_name": "Better Teacher"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+teacher.ID, teacherToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling User failed: %v", err)
		}
		if usr.FullName != "Better Teacher" {
			t.Errorf("full_name = %s; want %s", usr.FullName, "Better Teacher")
		}
	})

	t.Run("admin deactivates account", func(t *testing.T) {
		body := []byte(`{"is_active": false}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+teacher.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling User failed: %v", err)
		}
		if usr.IsActive == nil || *usr.IsActive {
			t.Error("user is still active")
		}
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@kboa.edu", "s3cret", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@kboa.edu", "s3cret", user.RoleTeacher, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+teacher.ID, teacherToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+teacher.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+teacher.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
