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

type CategoryStore interface {
	Create(ctx context.Context, category model.Category) (model.Category, error)
	FindByID(ctx context.Context, id string) (model.Category, error)
	FindByName(ctx context.Context, name string) (model.Category, error)
	Update(ctx context.Context, category model.Category) (model.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, spec query.Spec) ([]model.Category, int, error)
}

type CategoryProducts interface {
	ListByCategory(ctx context.Context, categoryID string) ([]model.Product, error)
}

type CategoryService struct {
	categories CategoryStore
	products   CategoryProducts
	bus        event.Bus
	now        func() time.Time
}

func NewCategoryService(categories CategoryStore, products CategoryProducts, bus event.Bus) *CategoryService {
	return &CategoryService{categories: categories, products: products, bus: bus, now: time.Now}
}

func (s *CategoryService) Create(ctx context.Context, actor model.AuditActor, input model.Category) (model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, "", name); err != nil {
		return model.Category{}, err
	}

	now := s.now().UTC()
	category, err := s.categories.Create(ctx, model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Category{}, err
	}

	publish(s.bus, event.New(event.TypeCategoryCreated, actor, "categories/"+category.ID, nil, category))
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, spec query.Spec) (query.Page[model.Category], error) {
	categories, total, err := s.categories.List(ctx, spec)
	if err != nil {
		return query.Page[model.Category]{}, err
	}
	return query.NewPage(categories, total, spec), nil
}

// Get returns the category together with the products filed under it.
func (s *CategoryService) Get(ctx context.Context, id string) (model.CategoryDetail, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return model.CategoryDetail{}, err
	}

	products, err := s.products.ListByCategory(ctx, category.ID)
	if err != nil {
		return model.CategoryDetail{}, err
	}
	if products == nil {
		products = []model.Product{}
	}

	return model.CategoryDetail{Category: category, Products: products}, nil
}

func (s *CategoryService) Update(ctx context.Context, actor model.AuditActor, id string, patch model.CategoryPatch) (model.Category, error) {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	next := current

	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
		if next.Name != current.Name {
			if err := s.ensureNameFree(ctx, current.ID, next.Name); err != nil {
				return model.Category{}, err
			}
		}
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}

	next.UpdatedAt = s.now().UTC()
	updated, err := s.categories.Update(ctx, next)
	if err != nil {
		return model.Category{}, err
	}

	publish(s.bus, event.New(event.TypeCategoryUpdated, actor, "categories/"+updated.ID, current, updated))
	return updated, nil
}

// Delete refuses categories that still hold products.
func (s *CategoryService) Delete(ctx context.Context, actor model.AuditActor, id string) error {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	publish(s.bus, event.New(event.TypeCategoryDeleted, actor, "categories/"+id, current, nil))
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, selfID string, name string) error {
	existing, err := s.categories.FindByName(ctx, name)
	if err == nil && existing.ID != selfID {
		return model.ErrCategoryNameTaken
	}
	if err != nil && !errors.Is(err, model.ErrCategoryNotFound) {
		return err
	}
	return nil
}
