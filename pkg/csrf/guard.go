package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/palisadehq/palisade/pkg/httputil"
	"github.com/palisadehq/palisade/pkg/observability"
)

// Default wire names. The cookie is HTTP-only; scripts read the token from
// the response header instead and send it back in the request header.
const (
	DefaultCookieName = "csrfToken"
	DefaultHeaderName = "X-CSRF-Token"
	DefaultTokenTTL   = time.Hour

	tokenBytes = 32
)

// Guard implements double-submit CSRF protection: the same secret must
// arrive in both the cookie and the request header for an unsafe-method
// request to be trusted.
type Guard struct {
	cookieName string
	headerName string
	ttl        time.Duration
	secure     bool
	pathPrefix string
	exempt     map[string]struct{}
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// GuardConfig configures a Guard
type GuardConfig struct {
	// CookieName defaults to DefaultCookieName
	CookieName string
	// HeaderName defaults to DefaultHeaderName
	HeaderName string
	// TokenTTL defaults to DefaultTokenTTL
	TokenTTL time.Duration
	// Secure marks the cookie Secure; set in production deployments
	Secure bool
	// PathPrefix scopes the guard: requests outside it pass through
	// untouched (no validation, no cookie churn). Empty guards everything.
	PathPrefix string
	// ExemptPaths lists exact request paths skipped on unsafe methods,
	// e.g. the login route where no prior safe-method visit could have
	// minted a token.
	ExemptPaths []string
}

// NewGuard creates a CSRF guard
func NewGuard(cfg GuardConfig, logger *observability.Logger, metrics *observability.Metrics) *Guard {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return &Guard{
		cookieName: cfg.CookieName,
		headerName: cfg.HeaderName,
		ttl:        cfg.TokenTTL,
		secure:     cfg.Secure,
		pathPrefix: cfg.PathPrefix,
		exempt:     exempt,
		logger:     logger,
		metrics:    metrics,
	}
}

// Middleware wraps a handler with the CSRF token lifecycle
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.pathPrefix != "" && !strings.HasPrefix(r.URL.Path, g.pathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		if isSafeMethod(r.Method) {
			g.issue(w, r)
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := g.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		if !g.validate(r) {
			if g.metrics != nil {
				g.metrics.CSRFRejections.Inc()
			}
			g.logger.WithField("path", r.URL.Path).Warn("CSRF validation failed")
			httputil.WriteInvalidCSRF(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// issue mints a token when the cookie is absent and always re-emits the
// current token as a response header so page scripts can pick it up.
func (g *Guard) issue(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		w.Header().Set(g.headerName, cookie.Value)
		return
	}

	token, err := mintToken()
	if err != nil {
		// crypto/rand failing means the process is in serious trouble; do
		// not set a guessable token, just skip issuance for this request.
		g.logger.WithError(err).Error("failed to mint CSRF token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(g.headerName, token)

	if g.metrics != nil {
		g.metrics.CSRFTokensIssued.Inc()
	}
}

// validate requires cookie and header tokens to be present and byte-equal.
// Missing tokens are a rejection, never an auto-issue: tokens are minted on
// safe methods only.
func (g *Guard) validate(r *http.Request) bool {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	header := r.Header.Get(g.headerName)
	if header == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func mintToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("csrf: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
