// Package tenant implements tenant resolution: the strategy that computes
// the one tenant a request may act on.
//
// # Strategies
//
// FromUser: the tenant already bound to the identity (active tenant or the
// sole membership).
//
// FromSlug: a URL path segment names the tenant; membership is verified.
//
// FromResource: the owning tenant of a resource addressed in the route;
// membership is verified. Resolving from the resource alone, without the
// membership cross-check, is the cross-tenant leak this package exists to
// prevent.
//
// # Contract
//
// Resolvers return ("", nil) when the caller is entitled to nothing (403),
// ErrNotFound when there is nothing to resolve against (404), and other
// errors only for store failures (500). A resolver result is computed once
// per request and never cached.
package tenant
