package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"themeforge/internal/ui"
)

var (
	// MetricRequestsTotal counts served requests by endpoint and status code
	MetricRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themeforge_requests_total",
		Help: "Total theme requests by endpoint and status code",
	}, []string{"endpoint", "code"})

	// MetricDerivationsTotal counts derived themes by display mode
	MetricDerivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "themeforge_derivations_total",
		Help: "Total derived themes by mode (dark or light)",
	}, []string{"mode"})

	// MetricInvalidColors counts requests rejected for a malformed color
	MetricInvalidColors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_invalid_colors_total",
		Help: "Total requests with an invalid color",
	})

	// MetricRateLimited counts requests rejected by the rate limiter
	MetricRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})

	// MetricNotModified counts conditional requests answered with 304
	MetricNotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_not_modified_total",
		Help: "Total requests answered with 304 Not Modified",
	})

	// MetricRequestDuration tracks handler latency
	MetricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "themeforge_request_duration_seconds",
		Help:    "Theme request duration in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}, []string{"endpoint"})
)

// MetricsServer wraps the HTTP server for prometheus metrics
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer creates a new metrics server
func NewMetricsServer(addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving metrics (non-blocking)
func (m *MetricsServer) Start() {
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ui.LogStatus("error", "Metrics server error: "+err.Error())
		}
	}()
}

// Shutdown gracefully stops the metrics server
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.server.Shutdown(shutdownCtx)
}
