//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/event"
	"inventory-api/internal/handler"
	"inventory-api/internal/middleware"
	"inventory-api/internal/model"
	"inventory-api/internal/repository"
	"inventory-api/internal/router"
	"inventory-api/internal/service"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

type stack struct {
	server *httptest.Server
	db     *database.DB
	users  *repository.UserRepository
	tokens *service.TokenService
	hasher *service.PasswordHasher
}

// newStack wires the full application against TEST_DATABASE_URL with empty tables.
func newStack(t *testing.T) *stack {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dsn, 4, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE audit_entries, products, categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:   10 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 1000,
		PageMaxLimit:     100,
	}

	tokens, err := service.NewTokenService("integration-secret", time.Hour, time.Minute)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db.Pool)
	categoryRepo := repository.NewCategoryRepository(db.Pool)
	productRepo := repository.NewProductRepository(db.Pool)
	auditRepo := repository.NewAuditRepository(db.Pool)

	bus := event.NewBus()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	userService := service.NewUserService(userRepo, hasher, bus)
	auditService := service.NewAuditService(auditRepo, bus)

	workerCtx, stop := context.WithCancel(ctx)
	done := auditService.Start(workerCtx)

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(tokens, userRepo, router.AccessPolicy()), router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(service.NewAuthService(userRepo, hasher, tokens, bus)),
		User:     handler.NewUserHandler(userService, repository.UserListing(cfg.PageMaxLimit)),
		Category: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, productRepo, bus), repository.CategoryListing(cfg.PageMaxLimit)),
		Product:  handler.NewProductHandler(service.NewProductService(productRepo, categoryRepo, bus), repository.ProductListing(cfg.PageMaxLimit)),
		Audit:    handler.NewAuditHandler(auditService, repository.AuditListing()),
	}))
	t.Cleanup(func() {
		server.Close()
		stop()
		<-done
	})

	return &stack{server: server, db: db, users: userRepo, tokens: tokens, hasher: hasher}
}

// admin inserts an admin straight into the users table and returns its token.
func (s *stack) admin(t *testing.T) string {
	t.Helper()

	hash, err := s.hasher.Hash("Adm1nPass")
	require.NoError(t, err)

	now := time.Now().UTC()
	u, err := s.users.Create(context.Background(), model.User{
		ID: "00000000-0000-4000-8000-000000000001", Email: "root@example.com", Handle: "root",
		PasswordHash: hash, FirstName: "Root", Role: model.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	token, err := s.tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func (s *stack) call(t *testing.T, method string, path string, token string, body any) (int, apiResponse) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, s.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func decodeData[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
