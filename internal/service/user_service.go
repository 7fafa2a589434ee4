package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/event"
	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

type UserStore interface {
	UserDirectory
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, spec query.Spec) ([]model.User, int, error)
}

// UserService is the administrative side of identity management.
type UserService struct {
	users  UserStore
	hasher *PasswordHasher
	bus    event.Bus
	now    func() time.Time
}

func NewUserService(users UserStore, hasher *PasswordHasher, bus event.Bus) *UserService {
	return &UserService{users: users, hasher: hasher, bus: bus, now: time.Now}
}

func (s *UserService) Create(ctx context.Context, actor model.AuditActor, req model.CreateUserRequest) (model.PublicUser, error) {
	email := normalizeEmail(req.Email)
	handle := strings.TrimSpace(req.Handle)

	if err := s.ensureAvailable(ctx, "", email, handle); err != nil {
		return model.PublicUser{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.PublicUser{}, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
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
		Avatar:       strings.TrimSpace(req.Avatar),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.PublicUser{}, err
	}

	publish(s.bus, event.New(event.TypeUserCreated, actor, "users/"+user.ID, nil, user.Public()))
	return user.Public(), nil
}

func (s *UserService) List(ctx context.Context, spec query.Spec) (query.Page[model.PublicUser], error) {
	users, total, err := s.users.List(ctx, spec)
	if err != nil {
		return query.Page[model.PublicUser]{}, err
	}
	return query.Map(query.NewPage(users, total, spec), model.User.Public), nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (model.PublicUser, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) GetByHandle(ctx context.Context, handle string) (model.PublicUser, error) {
	user, err := s.users.FindByHandle(ctx, strings.TrimSpace(handle))
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Update(ctx context.Context, actor model.AuditActor, id string, patch model.UserPatch) (model.PublicUser, error) {
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	before := current.Public()
	next := current

	if patch.Email != nil {
		next.Email = normalizeEmail(*patch.Email)
	}
	if patch.Handle != nil {
		next.Handle = strings.TrimSpace(*patch.Handle)
	}
	if patch.FirstName != nil {
		next.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		next.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Bio != nil {
		next.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.Avatar != nil {
		next.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return model.PublicUser{}, model.ErrInvalidInput
		}
		next.Role = *patch.Role
	}

	email, handle := "", ""
	if next.Email != current.Email {
		email = next.Email
	}
	if next.Handle != current.Handle {
		handle = next.Handle
	}
	if err := s.ensureAvailable(ctx, current.ID, email, handle); err != nil {
		return model.PublicUser{}, err
	}

	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return model.PublicUser{}, err
		}
		next.PasswordHash = hash
	}

	next.UpdatedAt = s.now().UTC()
	updated, err := s.users.Update(ctx, next)
	if err != nil {
		return model.PublicUser{}, err
	}

	publish(s.bus, event.New(event.TypeUserUpdated, actor, "users/"+updated.ID, before, updated.Public()))
	return updated.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, actor model.AuditActor, id string) error {
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	publish(s.bus, event.New(event.TypeUserDeleted, actor, "users/"+id, current.Public(), nil))
	return nil
}

// ensureAvailable checks the non-empty email/handle against identities other
// than selfID.
func (s *UserService) ensureAvailable(ctx context.Context, selfID string, email string, handle string) error {
	if email != "" {
		existing, err := s.users.FindByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return model.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, model.ErrUserNotFound) {
			return err
		}
	}

	if handle != "" {
		existing, err := s.users.FindByHandle(ctx, handle)
		if err == nil && existing.ID != selfID {
			return model.ErrHandleTaken
		}
		if err != nil && !errors.Is(err, model.ErrUserNotFound) {
			return err
		}
	}

	return nil
}
