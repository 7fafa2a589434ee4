package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
	"inventory-api/internal/repository"
	"inventory-api/internal/service/servicetest"
)

var admin = model.AuditActor{UserID: "admin-1", Role: model.RoleAdmin}

func createUserRequest(email string, handle string, role model.Role) model.CreateUserRequest {
	return model.CreateUserRequest{
		Email:     email,
		Password:  "Passw0rd!",
		Handle:    handle,
		FirstName: "Test",
		Role:      role,
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(servicetest.NewUsers(), NewPasswordHasher(bcrypt.MinCost), nil)

	created, err := svc.Create(ctx, admin, createUserRequest("Admin@X.com", "root", model.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "admin@x.com", created.Email)
	assert.Equal(t, model.RoleAdmin, created.Role)

	defaulted, err := svc.Create(ctx, admin, createUserRequest("u@x.com", "plain", ""))
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, defaulted.Role)

	_, err = svc.Create(ctx, admin, createUserRequest("admin@x.com", "other", model.RoleUser))
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	_, err = svc.Create(ctx, admin, createUserRequest("new@x.com", "root", model.RoleUser))
	assert.ErrorIs(t, err, model.ErrHandleTaken)
}

func TestUserService_Lookups(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(servicetest.NewUsers(), NewPasswordHasher(bcrypt.MinCost), nil)
	created, err := svc.Create(ctx, admin, createUserRequest("a@x.com", "alice", model.RoleUser))
	require.NoError(t, err)

	byID, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byEmail, err := svc.GetByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byHandle, err := svc.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byHandle.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = svc.GetByHandle(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	users := servicetest.NewUsers()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	svc := NewUserService(users, hasher, nil)

	alice, err := svc.Create(ctx, admin, createUserRequest("a@x.com", "alice", model.RoleUser))
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, createUserRequest("b@x.com", "bob", model.RoleUser))
	require.NoError(t, err)

	t.Run("changes role and password", func(t *testing.T) {
		role := model.RoleAdmin
		password := "N3wPassword"
		updated, err := svc.Update(ctx, admin, alice.ID, model.UserPatch{Role: &role, Password: &password})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)

		stored, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, hasher.Verify(password, stored.PasswordHash))
	})

	t.Run("keeping own email is not a conflict", func(t *testing.T) {
		email := "a@x.com"
		_, err := svc.Update(ctx, admin, alice.ID, model.UserPatch{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("taking another identity's email or handle conflicts", func(t *testing.T) {
		email := "b@x.com"
		_, err := svc.Update(ctx, admin, alice.ID, model.UserPatch{Email: &email})
		assert.ErrorIs(t, err, model.ErrEmailTaken)

		handle := "bob"
		_, err = svc.Update(ctx, admin, alice.ID, model.UserPatch{Handle: &handle})
		assert.ErrorIs(t, err, model.ErrHandleTaken)
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		role := model.Role("root")
		_, err := svc.Update(ctx, admin, alice.ID, model.UserPatch{Role: &role})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, "missing", model.UserPatch{})
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(servicetest.NewUsers(), NewPasswordHasher(bcrypt.MinCost), nil)
	created, err := svc.Create(ctx, admin, createUserRequest("a@x.com", "alice", model.RoleUser))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, created.ID), model.ErrUserNotFound)

	_, err = svc.Create(ctx, admin, createUserRequest("a@x.com", "alice", model.RoleUser))
	assert.NoError(t, err, "email and handle are reusable after deletion")
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(servicetest.NewUsers(), NewPasswordHasher(bcrypt.MinCost), nil)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	for _, u := range []struct {
		email, handle string
		role          model.Role
	}{
		{"d@x.com", "dora", model.RoleAdmin},
		{"a@x.com", "alice", model.RoleUser},
		{"c@x.com", "carl", model.RoleAdmin},
		{"b@x.com", "bert", model.RoleAdmin},
	} {
		_, err := svc.Create(ctx, admin, createUserRequest(u.email, u.handle, u.role))
		require.NoError(t, err)
	}

	res := repository.UserListing(100)
	spec := query.Build(query.Input{
		Equal:  map[string]string{"role": "admin"},
		SortBy: "email",
		Order:  "ASC",
		Limit:  "2",
	}, res)

	page, err := svc.List(ctx, spec)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "b@x.com", page.Items[0].Email)
	assert.Equal(t, "c@x.com", page.Items[1].Email)
	assert.Equal(t, query.Meta{TotalItems: 3, ItemCount: 2, ItemsPerPage: 2, TotalPages: 2, CurrentPage: 1}, page.Meta)

	spec.Page = 2
	page, err = svc.List(ctx, spec)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "d@x.com", page.Items[0].Email)
	for _, u := range page.Items {
		assert.Equal(t, model.RoleAdmin, u.Role)
	}
}
