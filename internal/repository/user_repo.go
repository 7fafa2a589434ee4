package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

const userColumns = `id, email, handle, password_hash, first_name, last_name, bio, avatar,
	role, created_at, updated_at`

type UserRepository struct {
	pool    *pgxpool.Pool
	listing query.Resource
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, listing: UserListing(0)}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Handle, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Bio, &u.Avatar, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = model.Role(role)
	return u, err
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users WHERE deleted_at IS NULL AND `+where, arg))

	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "lower(email) = lower($1)", strings.TrimSpace(email))
}

func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (model.User, error) {
	return r.findOne(ctx, "handle = $1", strings.TrimSpace(handle))
}

func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, handle, password_hash, first_name, last_name, bio, avatar,
		                    role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Email, u.Handle, u.PasswordHash, u.FirstName, u.LastName, u.Bio, u.Avatar,
		string(u.Role), u.CreatedAt, u.UpdatedAt)
	if sentinel, ok := uniqueViolation(err); ok {
		return model.User{}, sentinel
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u model.User) (model.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET email = $2, handle = $3, password_hash = $4, first_name = $5, last_name = $6,
		     bio = $7, avatar = $8, role = $9, updated_at = $10
		 WHERE id = $1 AND deleted_at IS NULL`,
		u.ID, u.Email, u.Handle, u.PasswordHash, u.FirstName, u.LastName, u.Bio, u.Avatar,
		string(u.Role), u.UpdatedAt)
	if sentinel, ok := uniqueViolation(err); ok {
		return model.User{}, sentinel
	}
	if isInvalidID(err) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

// Delete soft-deletes the identity; its email and handle become reusable.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if isInvalidID(err) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, spec query.Spec) ([]model.User, int, error) {
	clause := spec.SQL(r.listing).And("deleted_at IS NULL")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+clause.Where, clause.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, args := clause.Page(spec)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM users %s %s %s", userColumns, clause.Where, clause.OrderBy, page),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}
