package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/database"
	"inventory-api/internal/event"
	"inventory-api/internal/handler"
	"inventory-api/internal/metrics"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/router"
	"inventory-api/internal/service"
)

type App struct {
	server      *http.Server
	db          *database.DB
	bus         *event.InMemoryBus
	stopWorkers context.CancelFunc
	workersDone []<-chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration, cfg.JWTClockTolerance)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()
	hasher := service.NewPasswordHasher(cfg.BcryptCost)

	authService := service.NewAuthService(userRepo, hasher, tokenService, bus)
	userService := service.NewUserService(userRepo, hasher, bus)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, bus)
	productService := service.NewProductService(productRepo, categoryRepo, bus)
	auditService := service.NewAuditService(auditRepo, bus)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := []<-chan struct{}{auditService.Start(workerCtx)}

	var appMetrics *metrics.Metrics
	if cfg.MetricsEnabled {
		appMetrics = metrics.New(bus)
		workersDone = append(workersDone, appMetrics.Consume(workerCtx, bus))
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo, router.AccessPolicy())
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService, repository.UserListing(cfg.PageMaxLimit)),
		Category: handler.NewCategoryHandler(categoryService, repository.CategoryListing(cfg.PageMaxLimit)),
		Product:  handler.NewProductHandler(productService, repository.ProductListing(cfg.PageMaxLimit)),
		Audit:    handler.NewAuditHandler(auditService, repository.AuditListing()),
		Metrics:  appMetrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:      server,
		db:          db,
		bus:         bus,
		stopWorkers: stopWorkers,
		workersDone: workersDone,
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Requests are drained; flush pending audit entries before the pool closes.
	a.stopWorkers()
	for _, done := range a.workersDone {
		select {
		case <-done:
		case <-ctx.Done():
			slog.Warn("background worker did not finish before shutdown deadline")
		}
	}
	if dropped := a.bus.Dropped(); dropped > 0 {
		slog.Warn("events were dropped while running", "count", dropped)
	}

	a.db.Close()
	slog.Info("server stopped")
	return runErr
}
