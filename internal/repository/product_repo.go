package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

const productSelect = `SELECT p.id, p.name, p.description, p.price, p.stock, p.category_id,
	       c.name, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

type ProductRepository struct {
	pool    *pgxpool.Pool
	listing query.Resource
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool, listing: ProductListing(0)}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	var categoryName string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID,
		&categoryName, &p.CreatedAt, &p.UpdatedAt)
	p.Category = &model.CategorySummary{ID: p.CategoryID, Name: categoryName}
	return p, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) ExistsByName(ctx context.Context, name string, categoryID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1 AND category_id = $2)`,
		name, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, name, description, price, stock, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	if isForeignKeyViolation(err) {
		return model.Product{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p model.Product) (model.Product, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, stock = $5, category_id = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.UpdatedAt)
	if isForeignKeyViolation(err) {
		return model.Product{}, model.ErrCategoryNotFound
	}
	if isInvalidID(err) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if isInvalidID(err) {
		return model.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, spec query.Spec) ([]model.Product, int, error) {
	clause := spec.SQL(r.listing)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products p "+clause.Where, clause.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, args := clause.Page(spec)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("%s %s %s %s", productSelect, clause.Where, clause.OrderBy, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows, total)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.category_id = $1 ORDER BY p.name ASC, p.id ASC`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	products, _, err := collectProducts(rows, 0)
	return products, err
}

func collectProducts(rows pgx.Rows, total int) ([]model.Product, int, error) {
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}
