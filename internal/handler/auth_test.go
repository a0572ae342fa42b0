package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkart/storefront/internal/domain/user"
)

func TestSignup(t *testing.T) {
	e := newEnv(t)

	rec := doJSON(t, e.router, http.MethodPost, "/api/auth/signup", "", signupRequest{
		Username: "ravi",
		Password: "secret123",
		Phone:    "9876543210",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[authResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ravi", resp.User.Username)
	assert.False(t, resp.User.IsAdmin)

	claims, err := e.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	e := newEnv(t)

	req := signupRequest{Username: "ravi", Password: "secret123", Phone: "9876543210"}
	rec := doJSON(t, e.router, http.MethodPost, "/api/auth/signup", "", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req.Phone = "9000000000"
	rec = doJSON(t, e.router, http.MethodPost, "/api/auth/signup", "", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	hash, err := user.HashPassword("secret123")
	require.NoError(t, err)
	e.users.byID["u1"] = &user.User{ID: "u1", Username: "ravi", Phone: "9876543210", PasswordHash: hash}

	t.Run("valid credentials", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/auth/login", "", loginRequest{
			Phone:    "9876543210",
			Password: "secret123",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[authResponse](t, rec)
		assert.Equal(t, "u1", resp.User.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/auth/login", "", loginRequest{
			Phone:    "9876543210",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown phone", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/auth/login", "", loginRequest{
			Phone:    "1111111111",
			Password: "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminLogin_RejectsNonAdmin(t *testing.T) {
	e := newEnv(t)

	hash, err := user.HashPassword("secret123")
	require.NoError(t, err)
	e.users.byID["u1"] = &user.User{ID: "u1", Username: "ravi", Phone: "9876543210", PasswordHash: hash}

	rec := doJSON(t, e.router, http.MethodPost, "/api/admin/login", "", loginRequest{
		Phone:    "9876543210",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	e := newEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/user/sales/count", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/user/sales/count", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/user/sales/count", e.tokenFor(t, "u1", false), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	e := newEnv(t)

	t.Run("buyer token rejected", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/admin/users", e.tokenFor(t, "u1", false), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin token accepted", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/admin/users", e.tokenFor(t, "a1", true), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
