package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/pkg/config"
	"github.com/freshcart/storefront/pkg/db"
	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "", "JSON product seed file (defaults to FRESHCART_CATALOG_SEED_FILE)")
	runMigrations := flag.Bool("migrate", false, "apply pending migrations before seeding")
	dryRun := flag.Bool("dry-run", false, "validate the seed file without writing")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	path := *file
	if path == "" {
		path = cfg.Catalog.SeedFile
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "missing -file and FRESHCART_CATALOG_SEED_FILE")
		os.Exit(1)
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"file": path,
	})

	f, err := os.Open(path)
	requireResource(ctx, logg, "seed file", err)
	products, err := catalog.DecodeSeed(f, time.Now())
	_ = f.Close()
	requireResource(ctx, logg, "seed decode", err)
	ctx = logg.WithField(ctx, "products", len(products))

	if *dryRun {
		logg.Info(ctx, "seed file valid")
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *runMigrations {
		sqlDB, err := dbClient.DB().DB()
		requireResource(ctx, logg, "sql database", err)
		requireResource(ctx, logg, "migrations", migrate.Run(ctx, sqlDB, cfg.DB.Driver, "up"))
	}

	if err := catalog.NewRepository(dbClient.DB()).Upsert(ctx, products); err != nil {
		logg.Error(ctx, "seed upsert failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "catalog seeded")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
