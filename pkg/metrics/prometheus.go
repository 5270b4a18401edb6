package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abrezinsky/hoopsboard/internal/simulation"
)

// Manager owns the server's Prometheus collectors on a private registry.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activePages         prometheus.Gauge
	socketClients       prometheus.Gauge
	dragEvents          *prometheus.CounterVec
	recomputeDuration   prometheus.Histogram
	upstreamErrors      *prometheus.CounterVec
	submissions         *prometheus.CounterVec
}

// NewManager creates a metrics manager. Without WithRegistry it uses a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hoopsboard",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	m.activePages = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "active_pages",
		Help:      "Number of mounted leaderboard pages",
	})

	m.socketClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected page sockets",
	})

	m.dragEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "drag_events_total",
		Help:      "Drag end events by outcome",
	}, []string{"outcome"})

	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "simulation",
		Name:      "recompute_duration_seconds",
		Help:      "Time spent recomputing simulated totals and ranks",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
	})

	m.upstreamErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Failed contest API calls by operation",
	}, []string{"operation"})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "questions",
		Name:      "submissions_total",
		Help:      "Authored questions by submission status",
	}, []string{"status"})
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// SetActivePages sets the mounted page gauge.
func (m *Manager) SetActivePages(n int) {
	m.activePages.Set(float64(n))
}

// SetSocketClients sets the connected socket gauge.
func (m *Manager) SetSocketClients(n int) {
	m.socketClients.Set(float64(n))
}

// DragEnded counts a drag end by outcome.
func (m *Manager) DragEnded(outcome simulation.Outcome) {
	m.dragEvents.WithLabelValues(string(outcome)).Inc()
}

// Recomputed observes one simulated totals recompute.
func (m *Manager) Recomputed(d time.Duration) {
	m.recomputeDuration.Observe(d.Seconds())
}

// UpstreamError counts a failed contest API call.
func (m *Manager) UpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// SubmissionRecorded counts an authored question by status.
func (m *Manager) SubmissionRecorded(status string) {
	m.submissions.WithLabelValues(status).Inc()
}

// Middleware records request counts and latency labelled by the matched chi route pattern.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.RecordHTTPRequest(route, r.Method, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
