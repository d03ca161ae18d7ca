package edge

import "net/http"

// Fixed security response headers. HSTS is production-only: emitting it
// from a plain-HTTP development server would make browsers refuse later
// plain-HTTP connections to the same host.
const (
	hstsValue              = "max-age=31536000; includeSubDomains"
	referrerPolicyValue    = "strict-origin-when-cross-origin"
	permissionsPolicyValue = "camera=(), microphone=(), geolocation=()"
)

// ApplySecurityHeaders appends the fixed security headers to a response.
// Stateless and infallible; the production flag is its only condition.
func ApplySecurityHeaders(h http.Header, production bool) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", referrerPolicyValue)
	h.Set("Permissions-Policy", permissionsPolicyValue)
	if production {
		h.Set("Strict-Transport-Security", hstsValue)
	}
}

// SecurityHeadersMiddleware applies the fixed headers to every response
func SecurityHeadersMiddleware(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ApplySecurityHeaders(w.Header(), production)
			next.ServeHTTP(w, r)
		})
	}
}
