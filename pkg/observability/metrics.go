package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the request pipeline
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline outcomes
	BlocksTotal        *prometheus.CounterVec
	CSRFTokensIssued   prometheus.Counter
	CSRFRejections     prometheus.Counter
	TenantDenialsTotal *prometheus.CounterVec

	// Rate limiter
	RateLimitChecksTotal   *prometheus.CounterVec
	RateLimitStoreErrors   prometheus.Counter
	RateLimitCheckDuration prometheus.Histogram
	PresetFallbacksTotal   prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palisade_http_requests_total",
				Help: "Total number of HTTP requests through the pipeline",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "palisade_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		BlocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palisade_blocks_total",
				Help: "Requests terminated by the pipeline, by outcome",
			},
			[]string{"reason"},
		),
		CSRFTokensIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "palisade_csrf_tokens_issued_total",
				Help: "CSRF tokens minted for safe-method requests",
			},
		),
		CSRFRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "palisade_csrf_rejections_total",
				Help: "Unsafe-method requests rejected by the CSRF guard",
			},
		),
		TenantDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palisade_tenant_denials_total",
				Help: "Tenant resolution failures, by resolver strategy",
			},
			[]string{"strategy"},
		),
		RateLimitChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "palisade_ratelimit_checks_total",
				Help: "Rate limit checks, by preset and result",
			},
			[]string{"preset", "result"},
		),
		RateLimitStoreErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "palisade_ratelimit_store_errors_total",
				Help: "Failures of the rate limit counter store",
			},
		),
		RateLimitCheckDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "palisade_ratelimit_check_duration_seconds",
				Help:    "Latency of rate limit checks",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		PresetFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "palisade_ratelimit_preset_fallbacks_total",
				Help: "Unknown rate limit preset names that fell back to the default",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BlocksTotal,
		m.CSRFTokensIssued,
		m.CSRFRejections,
		m.TenantDenialsTotal,
		m.RateLimitChecksTotal,
		m.RateLimitStoreErrors,
		m.RateLimitCheckDuration,
		m.PresetFallbacksTotal,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records a completed HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// InstrumentHandler wraps a handler to record request count and duration
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.ObserveRequest(r.Method, path, sw.status, time.Since(start))
	})
}

// statusWriter captures the response status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
