// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// FileUploads counts upload attempts by terminal status (success, error).
	FileUploads = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "csv_processor_file_uploads_total",
		Help: "Total number of file uploads",
	}, []string{"status"})

	// ProcessingErrors counts CSV processing faults by class
	// (row_error, processing_error, storage_error).
	ProcessingErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "csv_processor_processing_errors_total",
		Help: "Total number of CSV processing errors",
	}, []string{"error_type"})

	// ActiveJobs tracks the number of currently running processing jobs.
	ActiveJobs = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "csv_processor_active_jobs",
		Help: "Number of currently active processing jobs",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the metrics endpoint for Prometheus scrapes.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
