package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/logger"
	"inventory-api/internal/model"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"
)

type seedUser struct {
	email     string
	handle    string
	password  string
	firstName string
	lastName  string
	role      model.Role
}

type seedProduct struct {
	name        string
	description string
	price       float64
	stock       int
	category    string
}

var users = []seedUser{
	{"admin@inventory.local", "admin", "Admin1234", "Inventory", "Admin", model.RoleAdmin},
	{"demo@inventory.local", "demo", "Demo12345", "Demo", "User", model.RoleUser},
}

var categories = []model.Category{
	{Name: "Electronics", Description: "Devices, peripherals and accessories"},
	{Name: "Office", Description: "Furniture and stationery"},
	{Name: "Warehouse", Description: "Packing and storage supplies"},
}

var products = []seedProduct{
	{"Laptop 14\"", "Ultrabook with 16GB RAM", 1199.00, 12, "Electronics"},
	{"USB-C Dock", "Dual display docking station", 189.90, 30, "Electronics"},
	{"Wireless Mouse", "Ergonomic, 2.4GHz", 24.50, 150, "Electronics"},
	{"Standing Desk", "Electric height-adjustable desk", 549.00, 5, "Office"},
	{"Task Chair", "Mesh back with lumbar support", 229.00, 18, "Office"},
	{"A4 Paper", "Box of 5 reams", 32.00, 80, "Office"},
	{"Pallet Wrap", "500mm stretch film roll", 14.75, 200, "Warehouse"},
	{"Shipping Boxes", "Pack of 25, medium", 19.99, 0, "Warehouse"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	s := &seeder{
		users:      repository.NewUserRepository(db.Pool),
		categories: repository.NewCategoryRepository(db.Pool),
		products:   repository.NewProductRepository(db.Pool),
		hasher:     service.NewPasswordHasher(cfg.BcryptCost),
		now:        time.Now().UTC(),
	}

	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	byName, err := s.seedCategories(ctx)
	if err != nil {
		return err
	}
	return s.seedProducts(ctx, byName)
}

type seeder struct {
	users      *repository.UserRepository
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	hasher     *service.PasswordHasher
	now        time.Time
}

func (s *seeder) seedUsers(ctx context.Context) error {
	for _, u := range users {
		_, err := s.users.FindByEmail(ctx, u.email)
		if err == nil {
			slog.Info("user already exists", "email", u.email)
			continue
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			return fmt.Errorf("find user %s: %w", u.email, err)
		}

		hash, err := s.hasher.Hash(u.password)
		if err != nil {
			return err
		}

		_, err = s.users.Create(ctx, model.User{
			ID:           uuid.NewString(),
			Email:        u.email,
			Handle:       u.handle,
			PasswordHash: hash,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			Role:         u.role,
			CreatedAt:    s.now,
			UpdatedAt:    s.now,
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		slog.Info("user created", "email", u.email, "role", u.role)
	}
	return nil
}

func (s *seeder) seedCategories(ctx context.Context) (map[string]string, error) {
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		existing, err := s.categories.FindByName(ctx, c.Name)
		if err == nil {
			slog.Info("category already exists", "name", c.Name)
			byName[c.Name] = existing.ID
			continue
		}
		if !errors.Is(err, model.ErrCategoryNotFound) {
			return nil, fmt.Errorf("find category %s: %w", c.Name, err)
		}

		c.ID = uuid.NewString()
		c.CreatedAt = s.now
		c.UpdatedAt = s.now
		created, err := s.categories.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("create category %s: %w", c.Name, err)
		}
		byName[c.Name] = created.ID
		slog.Info("category created", "name", c.Name)
	}
	return byName, nil
}

func (s *seeder) seedProducts(ctx context.Context, categoryIDs map[string]string) error {
	for _, p := range products {
		categoryID, ok := categoryIDs[p.category]
		if !ok {
			return fmt.Errorf("product %s references unknown category %s", p.name, p.category)
		}

		exists, err := s.products.ExistsByName(ctx, p.name, categoryID)
		if err != nil {
			return fmt.Errorf("find product %s: %w", p.name, err)
		}
		if exists {
			slog.Info("product already exists", "name", p.name)
			continue
		}

		_, err = s.products.Create(ctx, model.Product{
			ID:          uuid.NewString(),
			Name:        p.name,
			Description: p.description,
			Price:       p.price,
			Stock:       p.stock,
			CategoryID:  categoryID,
			CreatedAt:   s.now,
			UpdatedAt:   s.now,
		})
		if err != nil {
			return fmt.Errorf("create product %s: %w", p.name, err)
		}
		slog.Info("product created", "name", p.name, "category", p.category)
	}
	return nil
}
