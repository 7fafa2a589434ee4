package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/event"
	"inventory-api/internal/model"
	"inventory-api/pkg/apierror"
)

// UserDirectory is the lookup and persistence contract the authentication
// flow needs from the identity store. Lookups return model.ErrUserNotFound
// when nothing matches; Create returns model.ErrEmailTaken or
// model.ErrHandleTaken when a uniqueness constraint rejects the insert.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByHandle(ctx context.Context, handle string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
}

type AuthService struct {
	users  UserDirectory
	hasher *PasswordHasher
	tokens *TokenService
	bus    event.Bus
	now    func() time.Time
}

func NewAuthService(users UserDirectory, hasher *PasswordHasher, tokens *TokenService, bus event.Bus) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		bus:    bus,
		now:    time.Now,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email string, password string) (model.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResult{}, apierror.NotFound("no account for that email", nil)
	}
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("sign in lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.AuthResult{}, apierror.Unauthorized("incorrect credentials")
	}

	return s.issue(user)
}

// SignUp registers a new identity with RoleUser. Email and handle are pre-checked
// for a friendly error; the storage constraint still decides concurrent races.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest, ip string) (model.AuthResult, error) {
	email := normalizeEmail(req.Email)
	handle := strings.TrimSpace(req.Handle)

	if err := s.ensureAvailable(ctx, email, handle); err != nil {
		return model.AuthResult{}, s.signUpFailure(email, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResult{}, s.signUpFailure(email, err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Handle:       handle,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Bio:          strings.TrimSpace(req.Bio),
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.AuthResult{}, s.signUpFailure(email, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return model.AuthResult{}, s.signUpFailure(email, err)
	}

	publish(s.bus, event.New(event.TypeUserSignedUp, actorOf(user, ip), "users/"+user.ID, nil, user.Public()))
	return result, nil
}

func (s *AuthService) Profile(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("user not found", id)
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email string, handle string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	if _, err := s.users.FindByHandle(ctx, handle); err == nil {
		return model.ErrHandleTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	return nil
}

// signUpFailure keeps uniqueness conflicts precise and wraps anything else as
// unprocessable, logging the full cause.
func (s *AuthService) signUpFailure(email string, err error) error {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return apierror.Conflict("email taken", email)
	case errors.Is(err, model.ErrHandleTaken):
		return apierror.Conflict("handle taken", nil)
	}

	slog.Error("sign up failed", "email", email, "error", err)
	return apierror.Unprocessable("registration could not be completed", err)
}

func (s *AuthService) issue(user model.User) (model.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: token, User: user.Public()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func actorOf(user model.User, ip string) model.AuditActor {
	return model.AuditActor{UserID: user.ID, Email: user.Email, Role: user.Role, IP: ip}
}

func publish(bus event.Bus, e event.Event) {
	if bus == nil {
		return
	}
	bus.Publish(e)
}
