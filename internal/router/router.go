package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inventory-api/internal/config"
	"inventory-api/internal/handler"
	"inventory-api/internal/metrics"
	"inventory-api/internal/middleware"
	"inventory-api/internal/model"
)

// Operation names used by the access policy.
const (
	OpProfileGet       = "profile.get"
	OpUsersCreate      = "users.create"
	OpUsersList        = "users.list"
	OpUsersGet         = "users.get"
	OpUsersUpdate      = "users.update"
	OpUsersDelete      = "users.delete"
	OpCategoriesCreate = "categories.create"
	OpCategoriesList   = "categories.list"
	OpCategoriesGet    = "categories.get"
	OpCategoriesUpdate = "categories.update"
	OpCategoriesDelete = "categories.delete"
	OpProductsCreate   = "products.create"
	OpProductsList     = "products.list"
	OpProductsGet      = "products.get"
	OpProductsUpdate   = "products.update"
	OpProductsDelete   = "products.delete"
	OpAuditList        = "audit.list"
)

// AccessPolicy lists the operations restricted to specific roles. Everything
// else mounted behind RequireAuth is open to any authenticated identity.
func AccessPolicy() middleware.Policy {
	adminOnly := []model.Role{model.RoleAdmin}
	return middleware.Policy{
		OpUsersCreate:      adminOnly,
		OpUsersUpdate:      adminOnly,
		OpUsersDelete:      adminOnly,
		OpCategoriesCreate: adminOnly,
		OpCategoriesUpdate: adminOnly,
		OpCategoriesDelete: adminOnly,
		OpAuditList:        adminOnly,
	}
}

type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Audit    *handler.AuditHandler

	// Metrics is optional; when set, requests are instrumented and /metrics is served.
	Metrics *metrics.Metrics
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.NewClientIPResolver(cfg.TrustedProxies).Handler)
	if h.Metrics != nil {
		r.Use(h.Metrics.Instrument)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Check)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/register", h.Auth.Register)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)
			guard := authMiddleware.Authorize

			protected.With(guard(OpProfileGet)).Get("/profile", h.Auth.Profile)

			protected.Route("/users", func(users chi.Router) {
				users.With(guard(OpUsersCreate)).Post("/", h.User.Create)
				users.With(guard(OpUsersList)).Get("/", h.User.List)
				users.With(guard(OpUsersGet)).Get("/email/{email}", h.User.GetByEmail)
				users.With(guard(OpUsersGet)).Get("/handle/{handle}", h.User.GetByHandle)
				users.With(guard(OpUsersGet)).Get("/{id}", h.User.Get)
				users.With(guard(OpUsersUpdate)).Patch("/{id}", h.User.Update)
				users.With(guard(OpUsersDelete)).Delete("/{id}", h.User.Delete)
			})

			protected.Route("/categories", func(categories chi.Router) {
				categories.With(guard(OpCategoriesCreate)).Post("/", h.Category.Create)
				categories.With(guard(OpCategoriesList)).Get("/", h.Category.List)
				categories.With(guard(OpCategoriesGet)).Get("/{id}", h.Category.Get)
				categories.With(guard(OpCategoriesUpdate)).Put("/{id}", h.Category.Update)
				categories.With(guard(OpCategoriesDelete)).Delete("/{id}", h.Category.Delete)
			})

			protected.Route("/products", func(products chi.Router) {
				products.With(guard(OpProductsCreate)).Post("/", h.Product.Create)
				products.With(guard(OpProductsList)).Get("/", h.Product.List)
				products.With(guard(OpProductsGet)).Get("/{id}", h.Product.Get)
				products.With(guard(OpProductsUpdate)).Put("/{id}", h.Product.Update)
				products.With(guard(OpProductsDelete)).Delete("/{id}", h.Product.Delete)
			})

			protected.With(guard(OpAuditList)).Get("/audit", h.Audit.List)
		})
	})

	return r
}
