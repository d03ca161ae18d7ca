// Package edge implements the global first-touch filter applied to every
// request before route dispatch: rate limiting, CSRF protection, security
// headers, and a development-only diagnostic for mutation routes missing a
// guard preset.
//
// The filter never replaces per-route guards; it is the outer perimeter
// that holds even when a route is misconfigured.
package edge
