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

const categoryColumns = `id, name, description, created_at, updated_at`

type CategoryRepository struct {
	pool    *pgxpool.Pool
	listing query.Resource
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool, listing: CategoryListing(0)}
}

func scanCategory(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = $1`, strings.TrimSpace(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if sentinel, ok := uniqueViolation(err); ok {
		return model.Category{}, sentinel
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c model.Category) (model.Category, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.UpdatedAt)
	if sentinel, ok := uniqueViolation(err); ok {
		return model.Category{}, sentinel
	}
	if isInvalidID(err) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Category{}, model.ErrCategoryNotFound
	}
	return c, nil
}

// Delete fails with ErrCategoryInUse while products still reference the category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return model.ErrCategoryInUse
	}
	if isInvalidID(err) {
		return model.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context, spec query.Spec) ([]model.Category, int, error) {
	clause := spec.SQL(r.listing)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories "+clause.Where, clause.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	page, args := clause.Page(spec)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM categories %s %s %s", categoryColumns, clause.Where, clause.OrderBy, page),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}
