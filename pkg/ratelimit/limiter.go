package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/palisadehq/palisade/pkg/observability"
)

// FailMode decides what happens when the counter store itself fails.
type FailMode int

const (
	// FailClosed denies the request on store failure. Rate limiting is a
	// defense mechanism; this is the default.
	FailClosed FailMode = iota
	// FailOpen allows the request on store failure, with a loud log line
	// and an error metric. Opt-in only.
	FailOpen
)

// Result is the outcome of a single rate limit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter performs rate limit checks against a Store using named presets.
type Limiter struct {
	store    Store
	logger   *observability.Logger
	metrics  *observability.Metrics
	failMode FailMode

	// bypass disables limiting entirely. Set only from the test execution
	// flag at construction; this field is the single code path that can
	// skip a check.
	bypass bool

	mu      sync.RWMutex
	presets map[string]Config
}

// Options configures a Limiter
type Options struct {
	FailMode FailMode
	// Bypass disables all limiting; only the test execution context sets it
	Bypass bool
	// Presets overrides the built-in preset table; nil keeps defaults
	Presets map[string]Config
}

// NewLimiter creates a limiter over the given store
func NewLimiter(store Store, logger *observability.Logger, metrics *observability.Metrics, opts Options) *Limiter {
	presets := opts.Presets
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Limiter{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		failMode: opts.FailMode,
		bypass:   opts.Bypass,
		presets:  presets,
	}
}

// SetPresets atomically replaces the preset table (config hot reload)
func (l *Limiter) SetPresets(presets map[string]Config) {
	if presets == nil {
		return
	}
	l.mu.Lock()
	l.presets = presets
	l.mu.Unlock()
}

// ResolvePreset maps a preset name to its Config. An empty name means the
// default preset. Unknown names log a configuration warning and fall back
// to the default: a misconfigured route must still be protected by some
// limit.
func (l *Limiter) ResolvePreset(name string) Config {
	if name == "" {
		name = DefaultPreset
	}

	l.mu.RLock()
	cfg, ok := l.presets[name]
	if !ok {
		cfg = l.presets[DefaultPreset]
	}
	l.mu.RUnlock()

	if !ok {
		l.logger.WithField("preset", name).Warn("unknown rate limit preset, falling back to default")
		if l.metrics != nil {
			l.metrics.PresetFallbacksTotal.Inc()
		}
	}
	return cfg
}

// CheckPreset resolves the preset name and runs Check. The store key is
// namespaced by the preset name so every preset keeps its own counter and
// window for a given client key; without that, one preset's traffic would
// consume another's budget.
func (l *Limiter) CheckPreset(ctx context.Context, key, preset string) (Result, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	res, err := l.Check(ctx, preset+":"+key, l.ResolvePreset(preset))
	if l.metrics != nil {
		result := "allowed"
		switch {
		case err != nil:
			result = "error"
		case !res.Allowed:
			result = "limited"
		}
		l.metrics.RateLimitChecksTotal.WithLabelValues(preset, result).Inc()
	}
	return res, err
}

// Check performs one atomic increment-and-check for the key.
//
// The returned Result is valid whenever err is nil, including when the
// request is over the limit. A non-nil error means the store failed and the
// limiter is configured FailClosed; the caller must treat it as an internal
// pipeline failure, not as "allowed".
func (l *Limiter) Check(ctx context.Context, key string, cfg Config) (Result, error) {
	if l.bypass {
		return Result{Allowed: true, Limit: cfg.Max, Remaining: cfg.Max, ResetAt: time.Now().Add(cfg.Window)}, nil
	}

	if key == "" {
		key = "unknown"
	}

	start := time.Now()
	count, resetAt, err := l.store.Incr(ctx, key, cfg.Window)
	if l.metrics != nil {
		l.metrics.RateLimitCheckDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if l.metrics != nil {
			l.metrics.RateLimitStoreErrors.Inc()
		}
		if l.failMode == FailOpen {
			l.logger.WithError(err).Error("rate limit store failed, failing open")
			return Result{Allowed: true, Limit: cfg.Max, Remaining: cfg.Max, ResetAt: time.Now().Add(cfg.Window)}, nil
		}
		l.logger.WithError(err).Error("rate limit store failed, failing closed")
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	remaining := cfg.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(cfg.Max),
		Limit:     cfg.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// SetHeaders exposes the check outcome on the response so well-behaved
// clients can self-throttle. Set on every outcome, allowed or not.
func SetHeaders(w http.ResponseWriter, res Result) {
	w.Header().Set("RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}
