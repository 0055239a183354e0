// Package monitoring provides Prometheus metrics, OpenTelemetry setup and
// request-scoped logging
package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "nutrismart"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// AI gateway metrics
	aiRequestsTotal   *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec

	// Domain metrics
	plansGenerated  *prometheus.CounterVec
	groceryItems    prometheus.Counter
	chatMessages    prometheus.Counter
	progressEntries prometheus.Counter
}

// NewMetricsCollector registers every metric on its own registry, together
// with the Go runtime and process collectors
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Total number of AI gateway requests",
			},
			[]string{"provider", "model", "operation", "status"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "AI gateway request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"provider", "model", "operation"},
		),

		plansGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plans_generated_total",
				Help:      "Weekly meal plans generated, by mode",
			},
			[]string{"mode"},
		),
		groceryItems: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grocery_items_extracted_total",
				Help:      "Grocery items produced from meal plans",
			},
		),
		chatMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_total",
				Help:      "Chat messages answered by the coach",
			},
		),
		progressEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_entries_recorded_total",
				Help:      "Progress entries recorded",
			},
		),
	}
}

// Registry returns the registry backing the collector
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPMiddleware records request count, latency and response size per
// chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(r.Method, route).Observe(float64(ww.BytesWritten()))
	})
}

// ObserveAIRequest implements the AI gateway's recorder
func (m *MetricsCollector) ObserveAIRequest(provider, model, operation, status string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(provider, model, operation, status).Inc()
	m.aiRequestDuration.WithLabelValues(provider, model, operation).Observe(duration.Seconds())
}

// PlanGenerated counts a stored weekly plan
func (m *MetricsCollector) PlanGenerated(mode string) {
	m.plansGenerated.WithLabelValues(mode).Inc()
}

// GroceryItemsExtracted counts items written to the grocery list
func (m *MetricsCollector) GroceryItemsExtracted(n int) {
	m.groceryItems.Add(float64(n))
}

// ChatMessageAnswered counts a completed chat exchange
func (m *MetricsCollector) ChatMessageAnswered() {
	m.chatMessages.Inc()
}

// ProgressRecorded counts an upserted progress entry
func (m *MetricsCollector) ProgressRecorded() {
	m.progressEntries.Inc()
}

// RegisterDBStats exposes connection pool statistics for a SQL store
func (m *MetricsCollector) RegisterDBStats(db *sql.DB, name string) {
	if err := m.registry.Register(collectors.NewDBStatsCollector(db, name)); err != nil {
		m.logger.Warn("Failed to register database stats collector", zap.Error(err))
	}
}

// Register adds an external collector, such as the OpenTelemetry exporter
func (m *MetricsCollector) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
