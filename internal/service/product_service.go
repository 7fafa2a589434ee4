package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/event"
	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

type ProductStore interface {
	Create(ctx context.Context, product model.Product) (model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	Update(ctx context.Context, product model.Product) (model.Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, spec query.Spec) ([]model.Product, int, error)
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id string) (model.Category, error)
}

type ProductService struct {
	products   ProductStore
	categories CategoryFinder
	bus        event.Bus
	now        func() time.Time
}

func NewProductService(products ProductStore, categories CategoryFinder, bus event.Bus) *ProductService {
	return &ProductService{products: products, categories: categories, bus: bus, now: time.Now}
}

func (s *ProductService) Create(ctx context.Context, actor model.AuditActor, input model.Product) (model.Product, error) {
	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return model.Product{}, err
	}

	now := s.now().UTC()
	product, err := s.products.Create(ctx, model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  category.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, err
	}
	product.Category = &model.CategorySummary{ID: category.ID, Name: category.Name}

	publish(s.bus, event.New(event.TypeProductCreated, actor, "products/"+product.ID, nil, product))
	return product, nil
}

func (s *ProductService) List(ctx context.Context, spec query.Spec) (query.Page[model.Product], error) {
	products, total, err := s.products.List(ctx, spec)
	if err != nil {
		return query.Page[model.Product]{}, err
	}
	return query.NewPage(products, total, spec), nil
}

func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, actor model.AuditActor, id string, patch model.ProductPatch) (model.Product, error) {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	next := current

	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
	}
	if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
		category, err := s.categories.FindByID(ctx, *patch.CategoryID)
		if err != nil {
			return model.Product{}, err
		}
		next.CategoryID = category.ID
		next.Category = &model.CategorySummary{ID: category.ID, Name: category.Name}
	}

	next.UpdatedAt = s.now().UTC()
	updated, err := s.products.Update(ctx, next)
	if err != nil {
		return model.Product{}, err
	}

	publish(s.bus, event.New(event.TypeProductUpdated, actor, "products/"+updated.ID, current, updated))
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, actor model.AuditActor, id string) error {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	publish(s.bus, event.New(event.TypeProductDeleted, actor, "products/"+id, current, nil))
	return nil
}
