package guard

import (
	"errors"
	"net/http"

	"github.com/palisadehq/palisade/pkg/contextkeys"
	"github.com/palisadehq/palisade/pkg/edge"
	"github.com/palisadehq/palisade/pkg/httputil"
	"github.com/palisadehq/palisade/pkg/identity"
	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
	"github.com/palisadehq/palisade/pkg/tenant"
	"github.com/palisadehq/palisade/pkg/validation"
)

// Composer wraps route handlers with guard presets. One composer serves the
// whole router; per-route behavior comes from RouteConfig.
type Composer struct {
	limiter *ratelimit.Limiter

	// provider authenticates header-carrying requests
	provider identity.Provider
	// browserProvider additionally accepts the session cookie, for the
	// BrowserAccessible preset
	browserProvider identity.Provider

	logger         *observability.Logger
	metrics        *observability.Metrics
	trustedProxies []string
}

// ComposerConfig configures a Composer
type ComposerConfig struct {
	// BrowserProvider defaults to Provider when nil
	BrowserProvider identity.Provider
	TrustedProxies  []string
}

// NewComposer creates a guard composer
func NewComposer(limiter *ratelimit.Limiter, provider identity.Provider, logger *observability.Logger, metrics *observability.Metrics, cfg ComposerConfig) *Composer {
	browserProvider := cfg.BrowserProvider
	if browserProvider == nil {
		browserProvider = provider
	}
	return &Composer{
		limiter:         limiter,
		provider:        provider,
		browserProvider: browserProvider,
		logger:          logger,
		metrics:         metrics,
		trustedProxies:  cfg.TrustedProxies,
	}
}

// Wrap applies the configured preset pipeline around a handler. Sub-check
// order is fixed: rate limit before any identity or data work, identity
// before tenant resolution, resolution before shape validation, validation
// before the handler. Reordering per route is deliberately impossible.
func (c *Composer) Wrap(next http.Handler, cfg RouteConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		edge.MarkGuarded(r)

		if !c.checkRateLimit(w, r, cfg) {
			return
		}

		if cfg.Preset == Public {
			if !c.checkShape(w, r, cfg) {
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ident, ok := c.authenticate(w, r, cfg)
		if !ok {
			return
		}
		r = r.WithContext(contextkeys.WithIdentity(r.Context(), ident))

		if cfg.Preset == TenantProtected || cfg.Preset == BrowserAccessible {
			tenantID, ok := c.resolveTenant(w, r, ident, cfg)
			if !ok {
				return
			}
			r = r.WithContext(contextkeys.WithTenant(r.Context(), tenantID))
		}

		if !c.checkShape(w, r, cfg) {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Public wraps a handler with rate limiting only
func (c *Composer) Public(next http.Handler, rateLimitPreset string) http.Handler {
	return c.Wrap(next, RouteConfig{Preset: Public, RateLimitPreset: rateLimitPreset})
}

// UserPrivate wraps a handler with rate limiting and authentication
func (c *Composer) UserPrivate(next http.Handler, rateLimitPreset string) http.Handler {
	return c.Wrap(next, RouteConfig{Preset: UserPrivate, RateLimitPreset: rateLimitPreset})
}

// TenantProtected wraps a handler with the full tenant pipeline
func (c *Composer) TenantProtected(next http.Handler, resolver tenant.Resolver, schemas ...*validation.Schema) http.Handler {
	return c.Wrap(next, RouteConfig{Preset: TenantProtected, Resolver: resolver, Schemas: schemas})
}

// BrowserAccessible wraps a handler with the tenant pipeline, accepting
// cookie-borne identity for requests that cannot carry custom headers
func (c *Composer) BrowserAccessible(next http.Handler, resolver tenant.Resolver, schemas ...*validation.Schema) http.Handler {
	return c.Wrap(next, RouteConfig{Preset: BrowserAccessible, Resolver: resolver, Schemas: schemas})
}

func (c *Composer) checkRateLimit(w http.ResponseWriter, r *http.Request, cfg RouteConfig) bool {
	key := "route:ip:" + httputil.ClientIP(r, c.trustedProxies)
	res, err := c.limiter.CheckPreset(r.Context(), key, cfg.RateLimitPreset)
	if err != nil {
		c.fail(w, r, OutcomeInternalError, err)
		return false
	}

	ratelimit.SetHeaders(w, res)
	if !res.Allowed {
		c.block(w, r, OutcomeRateLimited)
		return false
	}
	return true
}

func (c *Composer) authenticate(w http.ResponseWriter, r *http.Request, cfg RouteConfig) (*identity.Identity, bool) {
	provider := c.provider
	if cfg.Preset == BrowserAccessible {
		provider = c.browserProvider
	}

	ident, err := provider.FromRequest(r)
	if err != nil {
		if errors.Is(err, identity.ErrNoIdentity) {
			c.block(w, r, OutcomeUnauthenticated)
			return nil, false
		}
		c.fail(w, r, OutcomeInternalError, err)
		return nil, false
	}
	return ident, true
}

func (c *Composer) resolveTenant(w http.ResponseWriter, r *http.Request, ident *identity.Identity, cfg RouteConfig) (string, bool) {
	if cfg.Resolver == nil {
		// A tenant preset without a resolver is a wiring bug; refuse the
		// request rather than running unscoped.
		c.fail(w, r, OutcomeInternalError, errors.New("guard: tenant preset configured without a resolver"))
		return "", false
	}

	tenantID, err := cfg.Resolver.Resolve(r.Context(), r, ident)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			c.denyTenant(w, r, OutcomeTenantUnresolved, cfg)
			return "", false
		}
		c.fail(w, r, OutcomeInternalError, err)
		return "", false
	}

	// Resolvers already enforce membership; re-check here so a future
	// resolver bug cannot widen access.
	if tenantID == "" || !ident.IsMember(tenantID) {
		c.denyTenant(w, r, OutcomeTenantDenied, cfg)
		return "", false
	}

	return tenantID, true
}

func (c *Composer) checkShape(w http.ResponseWriter, r *http.Request, cfg RouteConfig) bool {
	var fieldErrs []validation.FieldError
	for _, schema := range cfg.Schemas {
		if schema == nil || !schema.AppliesTo(r.Method) {
			continue
		}
		fieldErrs = append(fieldErrs, schema.Validate(r)...)
	}

	if len(fieldErrs) == 0 {
		return true
	}

	details := make([]httputil.FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = httputil.FieldError{Field: fe.Field, Message: fe.Message}
	}

	if c.metrics != nil {
		c.metrics.BlocksTotal.WithLabelValues(string(OutcomeValidationFailed)).Inc()
	}
	httputil.WriteValidationError(w, details)
	return false
}

// block writes the terminal response for an expected outcome
func (c *Composer) block(w http.ResponseWriter, r *http.Request, outcome Outcome) {
	if c.metrics != nil {
		c.metrics.BlocksTotal.WithLabelValues(string(outcome)).Inc()
	}

	switch outcome {
	case OutcomeRateLimited:
		httputil.WriteTooManyRequests(w)
	case OutcomeUnauthenticated:
		httputil.WriteUnauthorized(w)
	case OutcomeTenantDenied:
		httputil.WriteForbidden(w)
	case OutcomeTenantUnresolved:
		httputil.WriteNotFound(w)
	default:
		httputil.WriteInternalError(w)
	}
}

// denyTenant is block plus the per-strategy denial metric
func (c *Composer) denyTenant(w http.ResponseWriter, r *http.Request, outcome Outcome, cfg RouteConfig) {
	if c.metrics != nil && cfg.Resolver != nil {
		c.metrics.TenantDenialsTotal.WithLabelValues(cfg.Resolver.Strategy()).Inc()
	}
	observability.FromContext(r.Context()).WithFields(map[string]interface{}{
		"path":    r.URL.Path,
		"outcome": string(outcome),
	}).Warn("tenant access denied")
	c.block(w, r, outcome)
}

// fail logs an internal failure with full detail and answers a bare 500
func (c *Composer) fail(w http.ResponseWriter, r *http.Request, outcome Outcome, err error) {
	if c.metrics != nil {
		c.metrics.BlocksTotal.WithLabelValues(string(outcome)).Inc()
	}
	c.logger.WithError(err).
		WithField("path", r.URL.Path).
		WithField("request_id", contextkeys.RequestID(r.Context())).
		Error("pipeline failure")
	httputil.WriteInternalError(w)
}
