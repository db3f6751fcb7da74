package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const monitoringShutdownTimeout = 5 * time.Second

// NewMonitoringHandler serves /metrics from reg and /healthz from the health checker.
func NewMonitoringHandler(log *slog.Logger, reg *prometheus.Registry, db DBPinger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.Handle("GET /healthz", NewHealthChecker(db, log))
	return mux
}

// StartMonitoringServer blocks serving metrics and health checks until ctx is done.
func StartMonitoringServer(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, db DBPinger, port int) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           NewMonitoringHandler(log, reg, db),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := serve(ctx, log, srv, monitoringShutdownTimeout); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
