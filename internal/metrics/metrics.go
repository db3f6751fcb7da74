package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters for registry operations and HTTP requests, histograms for
// request and query latency, and the counters and gauges of the staff directory import.
type Metrics struct {
	Operations           *prometheus.CounterVec
	EmailConflicts       prometheus.Counter
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	DBQueryDuration      *prometheus.HistogramVec
	ItemsParsed          *prometheus.CounterVec
	ItemsImported        *prometheus.CounterVec
	EmailsFixed          prometheus.Counter
	LastSuccessfulImport prometheus.Gauge
	ImportDuration       prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_operations_total",
			Help: "Total employee registry operations by outcome.",
		}, []string{"operation", "outcome"}),
		EmailConflicts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "themis_email_conflicts_total",
			Help: "Total number of rejected writes because the email was already used.",
		}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_http_requests_total",
			Help: "Total HTTP requests served by the API.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "themis_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "themis_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'find_employee_by_id', 'insert_employee'
		ItemsParsed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_items_parsed_total",
			Help: "Total number of parsed items",
		}, []string{"type"}),
		ItemsImported: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "themis_items_imported_total",
			Help: "Total number of directory records handled by the importer.",
		}, []string{"result"}),
		EmailsFixed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "themis_emails_fixed_total",
			Help: "Total number of employee emails that were fixed or generated.",
		}),
		LastSuccessfulImport: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "themis_last_successful_import_timestamp",
			Help: "Last time when the directory import completed",
		}),
		ImportDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "themis_import_duration_seconds",
			Help: "Measures how long it takes for a full directory import to complete",
		}),
	}

	for _, result := range []string{"created", "skipped", "failed"} {
		metrics.ItemsImported.WithLabelValues(result)
	}

	return metrics
}
