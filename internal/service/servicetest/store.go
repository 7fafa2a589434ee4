// Package servicetest provides in-memory stores that satisfy the service
// interfaces, for tests that exercise the HTTP stack without PostgreSQL.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

type Users struct {
	mu    sync.RWMutex
	byID  map[string]model.User
	order []string

	// CreateErr, when set, is returned by Create instead of storing the user.
	CreateErr error
}

func NewUsers() *Users {
	return &Users{byID: map[string]model.User{}}
}

func (s *Users) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *Users) FindByHandle(_ context.Context, handle string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Handle == strings.TrimSpace(handle) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *Users) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return model.User{}, s.CreateErr
	}
	if err := s.conflict(u); err != nil {
		return model.User{}, err
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

func (s *Users) Update(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return model.User{}, model.ErrUserNotFound
	}
	if err := s.conflict(u); err != nil {
		return model.User{}, err
	}
	s.byID[u.ID] = u
	return u, nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Users) List(_ context.Context, spec query.Spec) ([]model.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]model.User, 0, len(s.byID))
	for _, id := range s.order {
		if u, ok := s.byID[id]; ok {
			items = append(items, u)
		}
	}

	page, total := apply(items, spec, listing[model.User]{
		search: []func(model.User) string{
			func(u model.User) string { return u.Email },
			func(u model.User) string { return u.Handle },
			func(u model.User) string { return u.FirstName },
			func(u model.User) string { return u.LastName },
		},
		equal: map[string]func(model.User) string{
			"role": func(u model.User) string { return string(u.Role) },
		},
		sort: map[string]func(model.User) any{
			"createdAt": func(u model.User) any { return u.CreatedAt },
			"email":     func(u model.User) any { return u.Email },
			"handle":    func(u model.User) any { return u.Handle },
			"firstName": func(u model.User) any { return u.FirstName },
			"lastName":  func(u model.User) any { return u.LastName },
		},
		id: func(u model.User) string { return u.ID },
	})
	return page, total, nil
}

func (s *Users) conflict(u model.User) error {
	for _, existing := range s.byID {
		if existing.ID == u.ID {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrEmailTaken
		}
		if existing.Handle == u.Handle {
			return model.ErrHandleTaken
		}
	}
	return nil
}

// Catalog holds categories and products together so that the foreign key
// between them can be enforced.
type Catalog struct {
	mu         sync.RWMutex
	categories map[string]model.Category
	products   map[string]model.Product
}

func NewCatalog() *Catalog {
	return &Catalog{categories: map[string]model.Category{}, products: map[string]model.Product{}}
}

func (c *Catalog) Categories() *Categories { return &Categories{c} }

func (c *Catalog) Products() *Products { return &Products{c} }

type Categories struct{ c *Catalog }

func (s *Categories) Create(_ context.Context, category model.Category) (model.Category, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	for _, existing := range s.c.categories {
		if existing.Name == category.Name {
			return model.Category{}, model.ErrCategoryNameTaken
		}
	}
	s.c.categories[category.ID] = category
	return category, nil
}

func (s *Categories) FindByID(_ context.Context, id string) (model.Category, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	category, ok := s.c.categories[id]
	if !ok {
		return model.Category{}, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *Categories) FindByName(_ context.Context, name string) (model.Category, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	for _, category := range s.c.categories {
		if category.Name == strings.TrimSpace(name) {
			return category, nil
		}
	}
	return model.Category{}, model.ErrCategoryNotFound
}

func (s *Categories) Update(_ context.Context, category model.Category) (model.Category, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.categories[category.ID]; !ok {
		return model.Category{}, model.ErrCategoryNotFound
	}
	for _, existing := range s.c.categories {
		if existing.ID != category.ID && existing.Name == category.Name {
			return model.Category{}, model.ErrCategoryNameTaken
		}
	}
	s.c.categories[category.ID] = category
	return category, nil
}

func (s *Categories) Delete(_ context.Context, id string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.categories[id]; !ok {
		return model.ErrCategoryNotFound
	}
	for _, p := range s.c.products {
		if p.CategoryID == id {
			return model.ErrCategoryInUse
		}
	}
	delete(s.c.categories, id)
	return nil
}

func (s *Categories) List(_ context.Context, spec query.Spec) ([]model.Category, int, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	items := make([]model.Category, 0, len(s.c.categories))
	for _, category := range s.c.categories {
		items = append(items, category)
	}

	page, total := apply(items, spec, listing[model.Category]{
		search: []func(model.Category) string{func(c model.Category) string { return c.Name }},
		sort: map[string]func(model.Category) any{
			"name":      func(c model.Category) any { return c.Name },
			"createdAt": func(c model.Category) any { return c.CreatedAt },
		},
		id: func(c model.Category) string { return c.ID },
	})
	return page, total, nil
}

type Products struct{ c *Catalog }

func (s *Products) Create(_ context.Context, p model.Product) (model.Product, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.categories[p.CategoryID]; !ok {
		return model.Product{}, model.ErrCategoryNotFound
	}
	p.Category = nil
	s.c.products[p.ID] = p
	return s.c.withCategory(p), nil
}

func (s *Products) FindByID(_ context.Context, id string) (model.Product, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	p, ok := s.c.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return s.c.withCategory(p), nil
}

func (s *Products) Update(_ context.Context, p model.Product) (model.Product, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.products[p.ID]; !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	if _, ok := s.c.categories[p.CategoryID]; !ok {
		return model.Product{}, model.ErrCategoryNotFound
	}
	p.Category = nil
	s.c.products[p.ID] = p
	return s.c.withCategory(p), nil
}

func (s *Products) Delete(_ context.Context, id string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if _, ok := s.c.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(s.c.products, id)
	return nil
}

func (s *Products) List(_ context.Context, spec query.Spec) ([]model.Product, int, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	items := make([]model.Product, 0, len(s.c.products))
	for _, p := range s.c.products {
		items = append(items, s.c.withCategory(p))
	}

	page, total := apply(items, spec, productListing)
	return page, total, nil
}

func (s *Products) ListByCategory(_ context.Context, categoryID string) ([]model.Product, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	items := make([]model.Product, 0)
	for _, p := range s.c.products {
		if p.CategoryID == categoryID {
			items = append(items, s.c.withCategory(p))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (c *Catalog) withCategory(p model.Product) model.Product {
	if category, ok := c.categories[p.CategoryID]; ok {
		p.Category = &model.CategorySummary{ID: category.ID, Name: category.Name}
	}
	return p
}

var productListing = listing[model.Product]{
	search: []func(model.Product) string{func(p model.Product) string { return p.Name }},
	equal: map[string]func(model.Product) string{
		"categoryId": func(p model.Product) string { return p.CategoryID },
	},
	ranges: map[string]func(model.Product) float64{
		"price": func(p model.Product) float64 { return p.Price },
		"stock": func(p model.Product) float64 { return float64(p.Stock) },
	},
	sort: map[string]func(model.Product) any{
		"name":      func(p model.Product) any { return p.Name },
		"price":     func(p model.Product) any { return p.Price },
		"stock":     func(p model.Product) any { return p.Stock },
		"createdAt": func(p model.Product) any { return p.CreatedAt },
	},
	id: func(p model.Product) string { return p.ID },
}

type Audit struct {
	mu      sync.RWMutex
	entries []model.AuditEntry
}

func NewAudit() *Audit {
	return &Audit{}
}

func (s *Audit) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Audit) Entries() []model.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AuditEntry(nil), s.entries...)
}

func (s *Audit) List(_ context.Context, spec query.Spec) ([]model.AuditEntry, int, error) {
	page, total := apply(s.Entries(), spec, listing[model.AuditEntry]{
		search: []func(model.AuditEntry) string{func(e model.AuditEntry) string { return e.Resource }},
		equal: map[string]func(model.AuditEntry) string{
			"action":  func(e model.AuditEntry) string { return e.Action },
			"actorId": func(e model.AuditEntry) string { return e.Actor.UserID },
			"status":  func(e model.AuditEntry) string { return e.Status },
		},
		sort: map[string]func(model.AuditEntry) any{
			"occurredAt": func(e model.AuditEntry) any { return e.OccurredAt },
			"action":     func(e model.AuditEntry) any { return e.Action },
		},
		id: func(e model.AuditEntry) string { return e.OccurredAt },
	})
	return page, total, nil
}

type listing[T any] struct {
	search []func(T) string
	equal  map[string]func(T) string
	ranges map[string]func(T) float64
	sort   map[string]func(T) any
	id     func(T) string
}

// apply mirrors the SQL rendering of a query.Spec over a slice.
func apply[T any](items []T, spec query.Spec, l listing[T]) ([]T, int) {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, spec, l) {
			filtered = append(filtered, item)
		}
	}

	if key, ok := l.sort[spec.SortField]; ok {
		sort.SliceStable(filtered, func(i, j int) bool {
			c := compare(key(filtered[i]), key(filtered[j]))
			if c == 0 {
				c = strings.Compare(l.id(filtered[i]), l.id(filtered[j]))
			}
			if spec.Order == query.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(filtered)
	start := spec.Offset()
	if start > total {
		start = total
	}
	end := start + spec.Limit
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

func matches[T any](item T, spec query.Spec, l listing[T]) bool {
	if spec.Search != "" && len(l.search) > 0 {
		needle := strings.ToLower(spec.Search)
		found := false
		for _, field := range l.search {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for param, want := range spec.Equal {
		if field, ok := l.equal[param]; ok && field(item) != want {
			return false
		}
	}

	for name, bounds := range spec.Ranges {
		field, ok := l.ranges[name]
		if !ok {
			continue
		}
		v := field(item)
		if bounds.Min != nil && v < *bounds.Min {
			return false
		}
		if bounds.Max != nil && v > *bounds.Max {
			return false
		}
	}

	return true
}

func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case int:
		return x - b.(int)
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}
