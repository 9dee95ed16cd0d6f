package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/techstore/internal/config"
	"github.com/utafrali/techstore/internal/event"
	handler "github.com/utafrali/techstore/internal/handler/http"
	"github.com/utafrali/techstore/internal/repository"
	"github.com/utafrali/techstore/internal/repository/memory"
	pgrepo "github.com/utafrali/techstore/internal/repository/postgres"
	redisrepo "github.com/utafrali/techstore/internal/repository/redis"
	"github.com/utafrali/techstore/internal/repository/static"
	"github.com/utafrali/techstore/internal/service"
	"github.com/utafrali/techstore/pkg/database"
	"github.com/utafrali/techstore/pkg/health"
	pkgkafka "github.com/utafrali/techstore/pkg/kafka"
	"github.com/utafrali/techstore/pkg/tracing"
)

const serviceVersion = "0.1.0"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	tracerShutdown tracing.ShutdownFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	healthHandler := health.NewHandler()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	products, err := a.productRepository(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	carts, err := a.cartRepository(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	catalogService, err := service.NewCatalogService(ctx, products, logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	cartService := service.NewCartService(carts, catalogService, a.eventPublisher(healthHandler), logger, cfg.SessionTTL())
	storefrontService := service.NewStorefrontService(cartService)

	// HTTP router.
	router := handler.NewRouter(handler.Services{
		Cart:       cartService,
		Catalog:    catalogService,
		Storefront: storefrontService,
	}, healthHandler, logger, handler.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CatalogCacheMaxAge: cfg.CatalogCacheMaxAge,
		PprofCIDRs:         cfg.PprofAllowedCIDRs,
		CartRateLimitRPS:   cfg.CartRateLimitRPS,
		CartRateLimitBurst: cfg.CartRateLimitBurst,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// productRepository returns the configured catalog source. The postgres
// source is migrated and seeded before use.
func (a *App) productRepository(ctx context.Context, hh *health.Handler) (repository.ProductRepository, error) {
	if a.cfg.CatalogSource != config.CatalogSourcePostgres {
		a.logger.Info("using static catalog")
		return static.NewProductRepository(nil), nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.String("database", a.cfg.PostgresDB),
	)

	database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMS)*time.Millisecond, a.logger)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "storefront"); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := pgrepo.NewProductRepository(pool)
	hh.Register("postgres", repo.Ping)
	return repo, nil
}

// cartRepository returns the configured cart store.
func (a *App) cartRepository(ctx context.Context, hh *health.Handler) (repository.CartRepository, error) {
	if a.cfg.CartBackend != config.CartBackendRedis {
		a.logger.Info("using in-memory cart store")
		return memory.NewCartRepository(a.cfg.SessionTTL()), nil
	}

	rdb, err := database.NewRedisClient(ctx, a.cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	repo := redisrepo.NewCartRepository(rdb, a.cfg.SessionTTL())
	hh.Register("redis", repo.Ping)
	return repo, nil
}

// eventPublisher returns the Kafka-backed publisher, or a no-op when Kafka is disabled.
func (a *App) eventPublisher(hh *health.Handler) service.EventPublisher {
	if !a.cfg.KafkaEnabled {
		a.logger.Info("kafka disabled, cart events will not be published")
		return event.NopPublisher{}
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
	hh.Register("kafka", a.producer.Ping)

	return event.NewProducer(a.producer, event.DefaultBreakerConfig(), a.logger)
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases the Kafka producer, Redis, Postgres and the tracer,
// whichever were opened.
func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
