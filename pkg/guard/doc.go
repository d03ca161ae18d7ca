// Package guard composes the per-route middleware pipeline from a small
// set of named presets.
//
// # Presets
//
// public: rate limit only.
//
// userPrivate: rate limit, then a valid authenticated identity (401 when
// absent). No tenant scope; for account-level operations.
//
// tenantProtected: rate limit, identity, tenant resolution with a
// membership check (403 on denial, 404 when there is nothing to resolve
// against), optional request shape validation (400 with field details),
// then the handler with the resolved tenant in its context.
//
// browserAccessible: tenantProtected for requests that cannot carry custom
// headers (an <img> fetching a protected asset); identity may arrive via
// the session cookie.
//
// # Ordering
//
// The sub-check order inside a preset is fixed. Rate limiting runs before
// any authentication or data lookup so abuse is rejected cheaply; tenant
// checks run before the handler touches any data. Routes choose a preset,
// never an ordering.
package guard
