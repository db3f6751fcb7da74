package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/UnknownOlympus/themis/internal/directory"
	"github.com/UnknownOlympus/themis/internal/lib/logger"
	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/UnknownOlympus/themis/internal/services/employees"
	"github.com/UnknownOlympus/themis/internal/services/importer"
	"github.com/prometheus/client_golang/prometheus"
)

// main copies the external staff directory into the registry once and exits.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := logger.Setup(cfg.Env, os.Stdout)

	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatalf("The importer needs the postgres storage driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Directory.BaseURL == "" || cfg.Directory.LoginURL == "" {
		log.Fatal("DIRECTORY_URL and DIRECTORY_LOGIN_URL must be set")
	}

	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	dtb, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	staff := employees.NewStaff(logger, repository.NewEmployeeRepository(dtb, appMetrics), appMetrics,
		employees.Policy{RevalidateEmailOnUpdate: cfg.Policy.RevalidateEmailOnUpdate})

	source := directory.NewSource(logger, directory.NewHTTPClient(logger), appMetrics, directory.Credentials{
		LoginURL: cfg.Directory.LoginURL,
		BaseURL:  cfg.Directory.BaseURL,
		Username: cfg.Directory.Username,
		Password: cfg.Directory.Password,
	}, cfg.Directory.Retries, cfg.Directory.RetryBackoff)

	imp := importer.NewImporter(logger, source, staff,
		repository.NewImportStatusRepository(dtb, appMetrics), appMetrics)

	summary, err := imp.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Directory import failed", sl.Err(err),
			"created", summary.Created, "skipped", summary.Skipped)
		stop()
		os.Exit(1) //nolint:gocritic // the pool is released by process exit
	}

	logger.InfoContext(ctx, "Directory import finished",
		"created", summary.Created, "skipped", summary.Skipped)
}
