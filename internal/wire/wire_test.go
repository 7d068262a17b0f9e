package wire

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	router http.Handler
	repo   *repository.Repository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	config := &utils.Config{
		Session:  utils.SessionConfig{TTLHours: 1, CookieName: "SESSION"},
		Security: utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Seed: utils.SeedConfig{
			Enabled:       true,
			AdminPassword: "admin111",
			UserPassword:  "user111",
		},
	}

	repo := repository.NewInMemoryRepository()
	app, err := Wiring(repo, nil, config, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, app.Service.Seed.SeedInitialData(context.Background()))

	return &testApp{router: app.Router, repo: repo}
}

func (a *testApp) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, cookie)
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (a *testApp) serve(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	rec := a.postForm("/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "SESSION" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func (a *testApp) user(t *testing.T, firstName string) *entity.User {
	t.Helper()

	user, err := a.repo.User.FindByFirstName(context.Background(), firstName)
	require.NoError(t, err)
	return user
}

func userForm(id int64, firstName, password string, roles ...string) url.Values {
	form := url.Values{
		"firstName": {firstName},
		"lastName":  {"Tester"},
		"email":     {firstName + "@example.com"},
		"password":  {password},
		"gender":    {string(entity.GenderFemale)},
	}
	if id > 0 {
		form.Set("id", strconv.FormatInt(id, 10))
	}
	if len(roles) > 0 {
		form["nameRole"] = roles
	}
	return form
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	t.Run("AdminLandsOnAdmin", func(t *testing.T) {
		rec := app.postForm("/login", url.Values{"username": {"admin"}, "password": {"admin111"}}, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})

	t.Run("UserLandsOnUser", func(t *testing.T) {
		rec := app.postForm("/login", url.Values{"username": {"user"}, "password": {"user111"}}, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/user", rec.Header().Get("Location"))
	})

	t.Run("BadPasswordRerendersForm", func(t *testing.T) {
		rec := app.postForm("/login", url.Values{"username": {"user"}, "password": {"nope"}}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid login or password")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("LoginPage", func(t *testing.T) {
		rec := app.get("/login", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/login"`)
	})

	t.Run("HomeRedirects", func(t *testing.T) {
		rec := app.get("/", nil)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		rec = app.get("/", app.login(t, "admin", "admin111"))
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})
}

func TestAccessControl(t *testing.T) {
	app := newTestApp(t)
	userCookie := app.login(t, "user", "user111")
	adminCookie := app.login(t, "admin", "admin111")

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		wantCode int
	}{
		{"anonymous admin", "/admin", nil, http.StatusSeeOther},
		{"anonymous user", "/user", nil, http.StatusSeeOther},
		{"anonymous news", "/news", nil, http.StatusSeeOther},
		{"user on admin", "/admin", userCookie, http.StatusForbidden},
		{"user on admin form", "/admin/user-save", userCookie, http.StatusForbidden},
		{"user on profile", "/user", userCookie, http.StatusOK},
		{"user on news", "/news", userCookie, http.StatusOK},
		{"admin on admin", "/admin", adminCookie, http.StatusOK},
		{"admin on profile", "/user", adminCookie, http.StatusOK},
		{"unknown page", "/nowhere", adminCookie, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.get(tt.path, tt.cookie)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusSeeOther {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			}
		})
	}
}

func TestAdminListUsers(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "admin", "admin111")

	rec := app.get("/admin", adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Users (2)")
	assert.Contains(t, rec.Body.String(), "admin@gmail.com")
	assert.Contains(t, rec.Body.String(), "Prefer not to say")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "application/json")
	rec = app.serve(req, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status bool `json:"status"`
		Data   struct {
			Total int64 `json:"total"`
			Users []struct {
				FirstName string   `json:"firstName"`
				Roles     []string `json:"roles"`
			} `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Status)
	assert.Equal(t, int64(2), body.Data.Total)
	require.Len(t, body.Data.Users, 2)
	assert.Equal(t, "admin", body.Data.Users[0].FirstName)
	assert.Equal(t, []string{entity.RoleNameAdmin}, body.Data.Users[0].Roles)
}

func TestAdminCreateUser(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "admin", "admin111")

	t.Run("FormShowsRoles", func(t *testing.T) {
		rec := app.get("/admin/user-save", adminCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="ROLE_ADMIN"`)
		assert.Contains(t, rec.Body.String(), `value="ROLE_USER"`)
	})

	t.Run("DefaultRole", func(t *testing.T) {
		rec := app.postForm("/admin/user-save", userForm(0, "alice", "secret1"), adminCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))

		alice := app.user(t, "alice")
		require.NotNil(t, alice)
		assert.Equal(t, []string{entity.RoleNameUser}, entity.RoleNames(alice.Roles))
		assert.True(t, utils.CheckPasswordHash("secret1", alice.Password))
	})

	t.Run("ChosenRole", func(t *testing.T) {
		rec := app.postForm("/admin/user-save", userForm(0, "boss", "secret1", entity.RoleNameAdmin), adminCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, []string{entity.RoleNameAdmin}, entity.RoleNames(app.user(t, "boss").Roles))
	})

	t.Run("DuplicateLogin", func(t *testing.T) {
		rec := app.postForm("/admin/user-save", userForm(0, "alice", "other12"), adminCookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Login is already taken")
		assert.True(t, utils.CheckPasswordHash("secret1", app.user(t, "alice").Password))
	})

	t.Run("UnknownRole", func(t *testing.T) {
		rec := app.postForm("/admin/user-save", userForm(0, "carol", "secret1", "ROLE_AUDITOR"), adminCookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ROLE_AUDITOR")
		assert.Nil(t, app.user(t, "carol"))
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		form := userForm(0, "d", "123")
		rec := app.postForm("/admin/user-save", form, adminCookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Minimum length is 2")
		assert.Contains(t, rec.Body.String(), "Minimum length is 6")
		assert.Nil(t, app.user(t, "d"))
	})

	t.Run("LongPassword", func(t *testing.T) {
		password := strings.Repeat("p", 80)
		rec := app.postForm("/admin/user-save", userForm(0, "frank", password), adminCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		frank := app.user(t, "frank")
		require.NotNil(t, frank)
		assert.True(t, utils.CheckPasswordHash(password, frank.Password))
		app.login(t, "frank", password)
	})

	t.Run("JSONBody", func(t *testing.T) {
		body := `{"firstName":"erin","lastName":"Tester","email":"erin@example.com","password":"secret1","nameRole":["ROLE_ADMIN","ROLE_USER"]}`
		req := httptest.NewRequest(http.MethodPost, "/admin/user-save", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := app.serve(req, adminCookie)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{entity.RoleNameAdmin, entity.RoleNameUser}, entity.RoleNames(app.user(t, "erin").Roles))
	})
}

func TestAdminUpdateUser(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "admin", "admin111")
	target := app.user(t, "user")

	t.Run("Form", func(t *testing.T) {
		rec := app.get("/admin/user-update/"+strconv.FormatInt(target.ID, 10), adminCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="user@gmail.com"`)
		assert.NotContains(t, rec.Body.String(), target.Password)
	})

	t.Run("FormForMissingUser", func(t *testing.T) {
		rec := app.get("/admin/user-update/999", adminCookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BlankPasswordKeepsHashAndRolesApply", func(t *testing.T) {
		form := userForm(target.ID, "user", "", entity.RoleNameAdmin)
		rec := app.postForm("/admin/user-update", form, adminCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))

		updated := app.user(t, "user")
		assert.Equal(t, target.Password, updated.Password)
		assert.Equal(t, "Tester", updated.LastName)
		assert.Equal(t, []string{entity.RoleNameAdmin}, entity.RoleNames(updated.Roles))
	})

	t.Run("NoRolesGivesDefault", func(t *testing.T) {
		rec := app.postForm("/admin/user-update", userForm(target.ID, "user", ""), adminCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, []string{entity.RoleNameUser}, entity.RoleNames(app.user(t, "user").Roles))
	})

	t.Run("LoginTaken", func(t *testing.T) {
		rec := app.postForm("/admin/user-update", userForm(target.ID, "admin", ""), adminCookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Login is already taken")
		assert.NotNil(t, app.user(t, "user"))
	})

	t.Run("JSONIdAsNumberOrString", func(t *testing.T) {
		for _, id := range []string{
			strconv.FormatInt(target.ID, 10),
			strconv.Quote(strconv.FormatInt(target.ID, 10)),
		} {
			body := `{"id":` + id + `,"firstName":"user","lastName":"Json","email":"user@example.com","password":"","nameRole":["ROLE_USER"]}`
			req := httptest.NewRequest(http.MethodPost, "/admin/user-update", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := app.serve(req, adminCookie)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "Json", app.user(t, "user").LastName)
		}
	})

	t.Run("MissingUser", func(t *testing.T) {
		rec := app.postForm("/admin/user-update", userForm(999, "ghost", "secret1"), adminCookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminDeleteUser(t *testing.T) {
	app := newTestApp(t)
	adminCookie := app.login(t, "admin", "admin111")
	userCookie := app.login(t, "user", "user111")
	target := app.user(t, "user")

	path := "/admin/user-delete/" + strconv.FormatInt(target.ID, 10)
	rec := app.postForm(path, url.Values{"_method": {"DELETE"}}, adminCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Nil(t, app.user(t, "user"))

	// The deleted user's session is gone
	rec = app.get("/user", userCookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Deleting again is harmless
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	rec = app.serve(req, adminCookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.postForm("/admin/user-delete/abc", url.Values{"_method": {"DELETE"}}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserSelfService(t *testing.T) {
	app := newTestApp(t)
	userCookie := app.login(t, "user", "user111")
	self := app.user(t, "user")
	admin := app.user(t, "admin")

	t.Run("Profile", func(t *testing.T) {
		rec := app.get("/user", userCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "user@gmail.com")
		assert.Contains(t, rec.Body.String(), "/user/user-update/"+strconv.FormatInt(self.ID, 10))
	})

	t.Run("OwnForm", func(t *testing.T) {
		rec := app.get("/user/user-update/"+strconv.FormatInt(self.ID, 10), userCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `name="nameRole"`)
	})

	t.Run("OtherFormForbidden", func(t *testing.T) {
		rec := app.get("/user/user-update/"+strconv.FormatInt(admin.ID, 10), userCookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("EditKeepsRoles", func(t *testing.T) {
		form := userForm(self.ID, "user", "", entity.RoleNameAdmin)
		form.Set("lastName", "Renamed")
		rec := app.postForm("/user/user-update", form, userCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/user", rec.Header().Get("Location"))

		updated := app.user(t, "user")
		assert.Equal(t, "Renamed", updated.LastName)
		assert.Equal(t, []string{entity.RoleNameUser}, entity.RoleNames(updated.Roles))
		assert.Equal(t, self.Password, updated.Password)
	})

	t.Run("PasswordChange", func(t *testing.T) {
		rec := app.postForm("/user/user-update", userForm(self.ID, "user", "newpass1"), userCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.True(t, utils.CheckPasswordHash("newpass1", app.user(t, "user").Password))
	})

	t.Run("EditOtherForbidden", func(t *testing.T) {
		rec := app.postForm("/user/user-update", userForm(admin.ID, "admin", ""), userCookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, admin.LastName, app.user(t, "admin").LastName)
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "user", "user111")

	rec := app.postForm("/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "SESSION", cleared[0].Name)
	assert.Empty(t, cleared[0].Value)

	rec = app.get("/news", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// Anonymous logout is harmless
	rec = app.postForm("/logout", url.Values{}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)

	app.login(t, "user", "user111")
	rec = app.get("/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_admin_http_requests_total")
	assert.Contains(t, rec.Body.String(), "user_admin_login_attempts_total")
}
