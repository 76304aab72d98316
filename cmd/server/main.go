package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/cache"
	"github.com/yourorg/salesdash/internal/config"
	"github.com/yourorg/salesdash/internal/dashboard"
	appdb "github.com/yourorg/salesdash/internal/db"
	"github.com/yourorg/salesdash/internal/events"
	"github.com/yourorg/salesdash/internal/handlers"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/middleware"
	"github.com/yourorg/salesdash/internal/routes"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()
	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}

	// ============================================================================
	// DB CONNECTION + MIGRATIONS
	// ============================================================================
	db, err := appdb.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Error(ctx, "database connect failed", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	if !cfg.DB.SkipMigrations {
		if err := appdb.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			logger.Error(ctx, "migrations failed", "error", err)
			os.Exit(1)
		}
	}
	dialect, err := store.DialectFor(cfg.DB.Driver)
	if err != nil {
		logger.Error(ctx, "dialect", "error", err)
		os.Exit(1)
	}
	gw := store.New(db, dialect)

	// ============================================================================
	// CACHE (Redis si REDIS_ADDR está definido, si no memoria)
	// ============================================================================
	cacheStore, limiterStorage := openCache(ctx, cfg, logger)

	// ============================================================================
	// HUB DE EVENTOS
	// ============================================================================
	hub := events.NewHub(logger.With("component", "events"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	app, err := buildApp(cfg, logger, gw, cacheStore, hub, limiterStorage)
	if err != nil {
		logger.Error(ctx, "build app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info(ctx, "server listening", "port", cfg.Port, "env", cfg.Env, "db", cfg.DB.Driver, "cache", cacheStore.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error(ctx, "listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	// a single operation: the steps in shutdown() must run in order
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"server": func(ctx context.Context) error {
				logger.Info(ctx, "graceful shutdown initiated")
				return shutdown(ctx, app, hub, stopHub, cacheStore, limiterStorage, db)
			},
		},
	)

	exitCode := <-wait
	logger.Info(ctx, "server exited", "code", exitCode)
	os.Exit(exitCode)
}

// buildApp wires handlers and middleware into a fiber app.
func buildApp(cfg *config.Config, logger logging.Logger, gw *store.Gateway, cacheStore cache.Store, hub *events.Hub, limiterStorage fiber.Storage) (*fiber.App, error) {
	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	v := validation.New()

	summary := dashboard.NewService(gw, cacheStore, cfg.SummaryCacheTTL, logger.With("component", "dashboard"))
	notify := events.Fanout{summary}
	var hubStats handlers.HubStats
	if hub != nil {
		notify = append(notify, hub)
		hubStats = hub
	}

	app := fiber.New(fiber.Config{
		AppName:      "salesdash",
		ErrorHandler: handlers.ErrorHandler(logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BodyLimit:    cfg.HTTP.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger.With("component", "http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: middleware.RequestIDHeader,
	}))

	routes.Register(app, routes.Deps{
		Tokens:        tokens,
		Auth:          handlers.NewAuthHandler(gw, hasher, tokens, v, logger),
		Products:      handlers.NewResourceHandler(handlers.Products, gw, v, notify, logger),
		WebsiteVisits: handlers.NewResourceHandler(handlers.WebsiteVisits, gw, v, notify, logger),
		StoreVisits:   handlers.NewResourceHandler(handlers.StoreVisits, gw, v, notify, logger),
		Dashboard:     handlers.NewDashboardHandler(summary, logger),
		Health: handlers.NewHealthHandler(cfg.Version,
			handlers.HealthCheck{Name: "database", Ping: gw.Ping},
			handlers.HealthCheck{Name: "cache", Ping: cacheStore.Ping},
		),
		Status:         handlers.NewStatusHandler(cfg.Version, gw.Stats, cacheStore, hubStats),
		Hub:            hub,
		LimiterStorage: limiterStorage,
	})
	return app, nil
}

// openCache prefers Redis and falls back to memory when Redis is not
// configured or does not answer.
func openCache(ctx context.Context, cfg *config.Config, logger logging.Logger) (cache.Store, fiber.Storage) {
	if !cfg.Redis.Enabled() {
		return cache.NewMemoryStore(time.Minute), nil
	}

	rs := cache.NewRedisStore(cache.NewRedisClient(cfg.Redis), "salesdash:")
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pctx); err != nil {
		logger.Warn(ctx, "redis unavailable, using in-memory cache", "addr", cfg.Redis.Addr, "error", err)
		_ = rs.Close()
		return cache.NewMemoryStore(time.Minute), nil
	}
	return rs, middleware.NewRedisStorage(cfg.Redis)
}

func shutdown(ctx context.Context, app *fiber.App, hub *events.Hub, stopHub context.CancelFunc, cacheStore cache.Store, limiterStorage fiber.Storage, db *sql.DB) error {
	var errs []error
	if err := app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = hub.Close()
	stopHub()
	if err := cacheStore.Close(); err != nil {
		errs = append(errs, err)
	}
	if limiterStorage != nil {
		if err := limiterStorage.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
