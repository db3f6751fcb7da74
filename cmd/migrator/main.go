package main

import (
	"context"
	"log"
	"os"

	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

func main() {
	cfg := config.MustLoad()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	dbpool, dbErr := repository.NewDatabase(context.Background(), cfg.Postgres)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal(err)
	}

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	if migrationErr := goose.Up(dtb, migrationsDir); migrationErr != nil {
		log.Fatal(migrationErr) //nolint:gocritic // deferred closes do not matter on exit
	}

	log.Println("✅ Migrations applied successfully")
}
