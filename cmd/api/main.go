package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/freshcart/storefront/api/middleware"
	"github.com/freshcart/storefront/api/routes"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/shopping"
	"github.com/freshcart/storefront/pkg/config"
	"github.com/freshcart/storefront/pkg/db"
	"github.com/freshcart/storefront/pkg/instance"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/metrics"
	"github.com/freshcart/storefront/pkg/migrate"
	"github.com/freshcart/storefront/pkg/redis"
)

type closer interface {
	Close() error
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID("api-0"),
		"backend":  cfg.Store.Backend,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		var err error
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
		if err != nil {
			logg.Error(context.Background(), "error releasing resources", err)
		}
	}()

	pingers := map[string]kvstore.Pinger{}

	var dbClient *db.Client
	if cfg.Store.Backend == config.StoreBackendSQL || cfg.Catalog.SeedFile == "" {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient)
		pingers["database"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var store kvstore.Store
	var idempotency kvstore.ExpiringStore
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
		pingers["redis"] = redisClient
		store = redisClient
		idempotency = redisClient
	case config.StoreBackendSQL:
		store = db.NewKVStore(dbClient)
	default:
		logg.Warn(ctx, "memory store selected; carts and wishlists will not survive restarts")
		store = kvstore.NewMemory()
	}

	if idempotency == nil {
		replies := kvstore.NewMemory()
		go sweepExpired(ctx, replies, time.Minute)
		idempotency = replies
	}

	source, err := catalogSource(cfg, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shoppingMetrics := metrics.NewShoppingMetrics(reg)

	registry, err := shopping.NewRegistry(shopping.RegistryParams{
		Store:     store,
		Namespace: cfg.Store.Namespace,
		Size:      cfg.Store.EngineCacheSize,
		Logger:    logg,
		Metrics:   shoppingMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create engine registry", err)
		os.Exit(1)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		go limiter.Run(cfg.RateLimit.IdleTTL, ctx.Done())
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Catalog: catalog.NewService(catalog.ServiceParams{
				Source:          source,
				Logger:          logg,
				Metrics:         shoppingMetrics,
				FetchLimit:      cfg.Catalog.FetchLimit,
				DefaultPageSize: cfg.Catalog.DefaultPageSize,
				MaxPageSize:     cfg.Catalog.MaxPageSize,
			}),
			Registry:    registry,
			Policy:      checkout.PolicyFromConfig(cfg.Checkout),
			RateLimiter: limiter,
			HTTPMetrics: metrics.NewHTTPMetrics(reg),
			Gatherer:    reg,
			Pingers:     pingers,
			Idempotency: idempotency,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

// catalogSource serves products from the seed file when one is configured,
// otherwise from the products table.
func catalogSource(cfg *config.Config, dbClient *db.Client) (catalog.Source, error) {
	if cfg.Catalog.SeedFile == "" {
		return catalog.NewRepository(dbClient.DB()), nil
	}
	f, err := os.Open(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	products, err := catalog.DecodeSeed(f, time.Now())
	if err != nil {
		return nil, err
	}
	return catalog.NewStaticSource(products), nil
}

// sweepExpired drops lapsed idempotency replies from the in-process store.
func sweepExpired(ctx context.Context, store *kvstore.Memory, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}
