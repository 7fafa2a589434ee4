package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/model"
	"inventory-api/internal/service"
	"inventory-api/internal/service/servicetest"
)

type failingLoader struct{}

func (failingLoader) FindByID(context.Context, string) (model.User, error) {
	return model.User{}, errors.New("database unavailable")
}

type authFixture struct {
	mw     *AuthMiddleware
	tokens *service.TokenService
	users  *servicetest.Users
	admin  model.User
	member model.User
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	tokens, err := service.NewTokenService("middleware-secret", time.Hour, time.Minute)
	require.NoError(t, err)

	users := servicetest.NewUsers()
	admin, err := users.Create(context.Background(), model.User{ID: "admin-1", Email: "admin@x.com", Handle: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)
	member, err := users.Create(context.Background(), model.User{ID: "user-1", Email: "user@x.com", Handle: "user", Role: model.RoleUser})
	require.NoError(t, err)

	policy := Policy{"users.delete": {model.RoleAdmin}}
	return authFixture{
		mw:     NewAuthMiddleware(tokens, users, policy),
		tokens: tokens,
		users:  users,
		admin:  admin,
		member: member,
	}
}

func (f authFixture) bearer(t *testing.T, user model.User) string {
	t.Helper()
	token, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.APIError {
	t.Helper()
	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.NotNil(t, body.Error)
	return *body.Error
}

func TestRequireAuth(t *testing.T) {
	f := newAuthFixture(t)

	var seen model.User
	handler := f.mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, user.ID, claims.Subject)
		seen = user
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token attaches identity", func(t *testing.T) {
		rec := serve(f.bearer(t, f.member))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-1", seen.ID)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		token, err := f.tokens.Issue(f.admin)
		require.NoError(t, err)
		rec := serve("bearer " + token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := serve("Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := serve("Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid or expired token", decodeError(t, rec).Message)
	})

	t.Run("identity deleted after issuance", func(t *testing.T) {
		ghost, err := f.users.Create(context.Background(), model.User{ID: "ghost", Email: "ghost@x.com", Handle: "ghost", Role: model.RoleUser})
		require.NoError(t, err)
		authorization := f.bearer(t, ghost)
		require.NoError(t, f.users.Delete(context.Background(), ghost.ID))

		rec := serve(authorization)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "identity no longer exists", decodeError(t, rec).Message)
	})

	t.Run("store failure is an internal error", func(t *testing.T) {
		mw := NewAuthMiddleware(f.tokens, failingLoader{}, nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", f.bearer(t, f.member))
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuthorize(t *testing.T) {
	f := newAuthFixture(t)

	serve := func(operation string, user model.User) *httptest.ResponseRecorder {
		handler := f.mw.RequireAuth(f.mw.Authorize(operation)(okHandler()))
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/x", nil)
		req.Header.Set("Authorization", f.bearer(t, user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("admin passes declared role", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("users.delete", f.admin).Code)
	})

	t.Run("user is forbidden and told the required roles", func(t *testing.T) {
		rec := serve("users.delete", f.member)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		apiErr := decodeError(t, rec)
		assert.Equal(t, "FORBIDDEN", apiErr.Code)
		assert.Equal(t, "Role admin is required to perform this operation", apiErr.Message)
		assert.Equal(t, map[string]any{"requiredRoles": []any{"admin"}}, apiErr.Details)
	})

	t.Run("undeclared operation only needs authentication", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("products.list", f.member).Code)
	})

	t.Run("without RequireAuth the request is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.mw.Authorize("users.delete")(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequiredRolesMessage(t *testing.T) {
	assert.Equal(t, "Role user or admin is required to perform this operation",
		requiredRolesMessage([]model.Role{model.RoleUser, model.RoleAdmin}))
}
