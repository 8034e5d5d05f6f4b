package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/dto"
	apierrors "github.com/yukikurage/corepm/internal/errors"
)

func TestAuthHandler_LoginReturnsTokenAndSession(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "Admin@Example.com",
		"password": testPassword,
	}, "")
	requireStatus(t, w, http.StatusOK)

	resp := decode[dto.LoginResponse](t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "admin@example.com", resp.User.Email)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The session cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	requireStatus(t, me, http.StatusOK)
	assert.Equal(t, "admin@example.com", decode[dto.UserDTO](t, me).Email)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong-password",
	}, "")
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, apierrors.ErrCodeUnauthorized, decode[apierrors.APIError](t, w).Code)

	w = env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com"}, "")
	requireStatus(t, w, http.StatusBadRequest)
}

func TestAuthHandler_MeRequiresAuthentication(t *testing.T) {
	env := setupHandlerTestEnv(t)

	requireStatus(t, env.request(http.MethodGet, "/api/v1/auth/me", nil, ""), http.StatusUnauthorized)
	requireStatus(t, env.request(http.MethodGet, "/api/v1/auth/me", nil, "not-a-token"), http.StatusUnauthorized)

	w := env.request(http.MethodGet, "/api/v1/auth/me", nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "member@example.com", decode[dto.UserDTO](t, w).Email)
}

func TestAuthHandler_LogoutClearsSession(t *testing.T) {
	env := setupHandlerTestEnv(t)

	login := env.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "member@example.com",
		"password": testPassword,
	}, "")
	requireStatus(t, login, http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	logout := httptest.NewRecorder()
	env.router.ServeHTTP(logout, req)
	requireStatus(t, logout, http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	for _, c := range logout.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	requireStatus(t, me, http.StatusUnauthorized)
}

func TestUserHandler_AdminOnly(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(http.MethodGet, "/api/v1/users", nil, env.userToken)
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, apierrors.ErrCodeForbidden, decode[apierrors.APIError](t, w).Code)

	w = env.request(http.MethodGet, "/api/v1/users", nil, env.adminToken)
	requireStatus(t, w, http.StatusOK)
	page := decode[dto.Page[dto.UserDTO]](t, w)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 2)
}

func TestUserHandler_CreateAndDuplicate(t *testing.T) {
	env := setupHandlerTestEnv(t)
	body := map[string]interface{}{
		"email":     "new@example.com",
		"password":  testPassword,
		"full_name": "New Person",
	}

	w := env.request(http.MethodPost, "/api/v1/users", body, env.adminToken)
	requireStatus(t, w, http.StatusCreated)
	created := decode[dto.UserDTO](t, w)
	assert.Equal(t, "user", string(created.Role))
	assert.True(t, created.IsActive)

	w = env.request(http.MethodPost, "/api/v1/users", body, env.adminToken)
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, apierrors.ErrCodeAlreadyExists, decode[apierrors.APIError](t, w).Code)
}
