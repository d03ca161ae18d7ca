package edge

import (
	"net/http"

	"github.com/palisadehq/palisade/pkg/csrf"
	"github.com/palisadehq/palisade/pkg/httputil"
	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
)

// Filter is the first-touch layer for every request: global rate limit,
// CSRF guard, security headers, and (outside production) the unguarded
// mutation diagnostic. Route-level guards run later, after dispatch.
type Filter struct {
	limiter        *ratelimit.Limiter
	guard          *csrf.Guard
	logger         *observability.Logger
	production     bool
	trustedProxies []string
	globalPreset   string
	metrics        *observability.Metrics
}

// FilterConfig configures the global edge filter
type FilterConfig struct {
	// Production gates HSTS and disables the mutation diagnostic
	Production bool
	// TrustedProxies are peers whose forwarding headers are honored when
	// deriving the client key
	TrustedProxies []string
	// GlobalPreset is the rate limit preset applied to all traffic before
	// dispatch; empty uses the default preset
	GlobalPreset string
}

// NewFilter creates the global edge filter
func NewFilter(limiter *ratelimit.Limiter, guard *csrf.Guard, logger *observability.Logger, metrics *observability.Metrics, cfg FilterConfig) *Filter {
	return &Filter{
		limiter:        limiter,
		guard:          guard,
		logger:         logger,
		production:     cfg.Production,
		trustedProxies: cfg.TrustedProxies,
		globalPreset:   cfg.GlobalPreset,
		metrics:        metrics,
	}
}

// Handler wraps the route dispatcher with the edge pipeline. Check order is
// fixed: rate limit first (cheap rejection of abuse before any other work),
// then CSRF, then the handler. Security headers are appended up front so
// every response carries them, including the filter's own rejections.
func (f *Filter) Handler(next http.Handler) http.Handler {
	inner := f.guard.Middleware(next)
	if !f.production {
		inner = f.guard.Middleware(UnguardedMutationDiagnostics(next))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ApplySecurityHeaders(w.Header(), f.production)

		// The global: scope keeps this counter apart from the per-route
		// checks, which may name the same preset for the same client.
		key := "global:ip:" + httputil.ClientIP(r, f.trustedProxies)
		res, err := f.limiter.CheckPreset(r.Context(), key, f.globalPreset)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("edge rate limit check failed")
			if f.metrics != nil {
				f.metrics.BlocksTotal.WithLabelValues("internal_error").Inc()
			}
			httputil.WriteInternalError(w)
			return
		}

		ratelimit.SetHeaders(w, res)
		if !res.Allowed {
			if f.metrics != nil {
				f.metrics.BlocksTotal.WithLabelValues("rate_limited").Inc()
			}
			httputil.WriteTooManyRequests(w)
			return
		}

		inner.ServeHTTP(w, r)
	})
}
