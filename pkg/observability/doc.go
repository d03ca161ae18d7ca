// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry bootstrap, health probes, and graceful shutdown for the
// request pipeline.
//
// # Overview
//
// The pipeline packages (ratelimit, csrf, guard, edge) accept a *Logger and
// *Metrics so every block, denial, and store failure is visible without any
// package owning its own logging setup.
//
// # Components
//
// Logger: structured JSON logging on log/slog
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("tenant_id", id).Warn("tenant access denied")
//
// Metrics: Prometheus counters and histograms for pipeline outcomes
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.BlocksTotal.WithLabelValues("rate_limited").Inc()
//
// HealthChecker: liveness/readiness probes over the limiter store and the
// tenant directory.
//
// InitOTel: OTLP/gRPC trace and metric provider setup.
//
// # Related Packages
//
//   - pkg/guard: records outcomes through Metrics
//   - pkg/ratelimit: logs preset fallback and store failures
package observability
