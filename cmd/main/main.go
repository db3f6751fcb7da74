package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/UnknownOlympus/themis/internal/lib/logger"
	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/UnknownOlympus/themis/internal/server"
	"github.com/UnknownOlympus/themis/internal/services/employees"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// storage bundles the employee gateway with what the health check pings and how to release it.
type storage struct {
	repo   repository.EmployeeRepoIface
	pinger server.DBPinger
	close  func()
}

// main is the entry point of the application.
func main() {
	var wgr sync.WaitGroup

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := logger.Setup(cfg.Env, os.Stdout)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	store, err := openStorage(ctx, cfg, appMetrics)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.close()

	staff := employees.NewStaff(logger, store.repo, appMetrics, employees.Policy{
		RevalidateEmailOnUpdate: cfg.Policy.RevalidateEmailOnUpdate,
	})
	translator := server.NewTranslator(logger, server.StatusPolicy{
		Conflict:          cfg.Policy.ConflictStatus,
		NotFound:          cfg.Policy.NotFoundStatus,
		Invalid:           http.StatusBadRequest,
		HideFaultMessages: cfg.Policy.HideFaultMessages,
	})
	handler := server.NewEmployeeHandler(logger, staff, translator, server.Paging{
		DefaultSize: cfg.Paging.DefaultSize,
		MaxSize:     cfg.Paging.MaxSize,
	})
	api := server.NewAPIServer(logger, cfg.HTTP, appMetrics, handler, translator)

	wgr.Add(2)

	go func() {
		defer wgr.Done()
		server.StartMonitoringServer(ctx, logger, reg, store.pinger, cfg.HTTP.MonitoringPort)
	}()

	go func() {
		defer wgr.Done()
		if runErr := api.Run(ctx); runErr != nil {
			logger.ErrorContext(ctx, "API server failed", sl.Err(runErr))
			stop()
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))

	wgr.Wait()

	logger.InfoContext(context.WithoutCancel(ctx), "Application stopped gracefully...")
}

func openStorage(ctx context.Context, cfg *config.Config, appMetrics *metrics.Metrics) (storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		repo := repository.NewMemoryEmployeeRepository()
		return storage{repo: repo, pinger: repo, close: func() {}}, nil
	}

	dtb, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		return storage{}, err
	}

	return storage{
		repo:   repository.NewEmployeeRepository(dtb, appMetrics),
		pinger: dtb,
		close:  dtb.Close,
	}, nil
}
