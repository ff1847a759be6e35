package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core/user"
	"github.com/trezcool/agenda/testutil"
)

const testPwd = "Agend@-2024!x"

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.repos.users, "Marta", "marta@example.com", testPwd, user.RoleTeacher)

	body := func(email, pwd string) []byte {
		return marchallObj(t, LoginRequest{Email: email, Password: pwd})
	}

	app.run(t, []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/users/login", body: body("", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login", body: body("nobody@example.com", testPwd),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login", body: body(usr.Email, "nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
	})

	t.Run("success", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", body(" MARTA@example.com ", testPwd))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return app.srv.auth.jwtConfig.SigningKey, nil
		})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.Equal(t, user.RoleTeacher, claims.Role)

		// last login is recorded
		got, err := app.srv.deps.UserSvc.GetByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.True(t, got.LastLogin.Valid)

		// the token opens the authed endpoints
		rec = app.do(http.MethodGet, "/v1/me", resp.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.repos.users, "Marta", "marta@example.com", "", user.RoleTutor)

	expired, err := app.srv.auth.generateToken(app.srv.auth.userClaims(usr, time.Now().Add(-24*time.Hour).Unix()))
	require.NoError(t, err)

	app.run(t, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh", token: expired,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	})

	rec := app.do(http.MethodPost, "/v1/users/token-refresh", app.getToken(t, usr))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)
	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	admin := testutil.CreateUser(t, app.repos.users, "Ada Admin", "ada@example.com", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.repos.users, "Teo Teacher", "teo@example.com", "", user.RoleTeacher)
	tutor := testutil.CreateUser(t, app.repos.users, "Tina Tutor", "tina@example.com", "", user.RoleTutor)
	tutor2 := testutil.CreateUser(t, app.repos.users, "Toni", "toni@example.com", "", user.RoleTutor)

	adminToken := app.getToken(t, admin)
	empty := marchallList(t)

	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "staff required", path: "/v1/users", token: app.getToken(t, tutor),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "get all", path: "/v1/users", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, tutor, tutor2),
		},
		{
			name: "teachers can list", path: "/v1/users", token: app.getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, tutor, tutor2),
		},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "search=TUTOR", path: path("TUTOR"), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, tutor),
		},
		{
			name: "search by email", path: path("toni@"), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, tutor2),
		},
		{name: "role (unknown)", path: path("", "lol"), token: adminToken, wantCode: http.StatusOK, wantData: empty},
		{
			name: "role=tutor", path: path("", string(user.RoleTutor)), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, tutor, tutor2),
		},
		{
			name: "role=admin,teacher", path: path("", string(user.RoleAdmin), string(user.RoleTeacher)), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher),
		},
		{
			name: "roles", path: "/v1/users/roles", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles),
		},
		{
			name: "tutor contacts", path: "/v1/users/contacts", token: app.getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher),
		},
	})
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.repos.users, "Ada", "ada@example.com", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.repos.users, "Teo", "teo@example.com", "", user.RoleTeacher)

	newUser := func(email, role, pwd string) []byte {
		return marchallObj(t, user.NewUser{Name: "Lucia", Email: email, Role: user.Role(role), Password: pwd, PasswordConfirm: pwd})
	}

	app.run(t, []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/users/register", token: app.getToken(t, teacher),
			body: newUser("lucia@example.com", "tutor", testPwd), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/users/register", token: app.getToken(t, admin),
			body:     newUser("TEO@example.com", "tutor", testPwd),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/v1/users/register", token: app.getToken(t, admin),
			body:     newUser("lucia@example.com", "janitor", testPwd),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "must be one of: admin, teacher, tutor"}),
		},
	})

	rec := app.do(http.MethodPost, "/v1/users/register", app.getToken(t, admin), newUser("Lucia@Example.com", "tutor", testPwd))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "lucia@example.com", got.Email)
	assert.Equal(t, user.RoleTutor, got.Role)
	assert.NotContains(t, rec.Body.String(), "password")
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.repos.users, "Ada", "ada@example.com", "", user.RoleAdmin)
	teacher := testutil.CreateUser(t, app.repos.users, "Teo", "teo@example.com", "", user.RoleTeacher)
	tutor := testutil.CreateUser(t, app.repos.users, "Tina", "tina@example.com", "", user.RoleTutor)
	c := testutil.CreateCenter(t, app.repos.centers, "Centro")
	testutil.CreateStudent(t, app.repos.students, "Emma", c.ID, "", tutor.ID, time.Time{})

	tutorToken := app.getToken(t, tutor)
	adminToken := app.getToken(t, admin)

	app.run(t, []httpTest{
		{name: "self", path: "/v1/users/" + tutor.ID, token: tutorToken, wantCode: http.StatusOK, wantData: marchallObj(t, tutor)},
		{name: "other (not admin)", path: "/v1/users/" + teacher.ID, token: tutorToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "other (admin)", path: "/v1/users/" + teacher.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
		{name: "unknown", path: "/v1/users/unknown", token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "role change (not admin)", method: http.MethodPut, path: "/v1/users/" + tutor.ID, token: tutorToken,
			body: []byte(`{"role":"admin"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "delete (not admin)", method: http.MethodDelete, path: "/v1/users/" + teacher.ID, token: tutorToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "delete tutor of a student", method: http.MethodDelete, path: "/v1/users/" + tutor.ID, token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrIsTutor.Error()}),
		},
	})

	t.Run("rename self", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/users/"+tutor.ID, tutorToken, []byte(`{"name":"  Tina Maria "}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Tina Maria", got.Name)
		assert.Equal(t, tutor.Email, got.Email)
		assert.Equal(t, user.RoleTutor, got.Role)
	})

	t.Run("delete teacher", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/v1/users/"+teacher.ID, adminToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(http.MethodGet, "/v1/me", app.getToken(t, teacher))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "tokens of deleted users are rejected")
	})
}
