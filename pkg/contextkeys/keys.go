// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the pipeline must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/palisadehq/palisade/pkg/contextkeys"
//   ctx = contextkeys.WithIdentity(ctx, ident)
//   ident, ok := ctx.Value(contextkeys.IdentityKey).(*identity.Identity)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// IdentityKey contains *identity.Identity
	// Set by: guard composer after the identity provider runs
	// Required by: tenant resolvers, protected handlers
	// Type: *identity.Identity
	IdentityKey Key = "identity"

	// TenantKey contains the resolved tenant ID string
	// Set by: guard composer after tenant resolution succeeds
	// Required by: tenant-protected handlers (the only tenant ID they may use)
	// Type: string
	TenantKey Key = "tenant_id"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger, tracing
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability middleware
	// Used by: handlers that need structured logging with request context
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// Helper functions for type-safe context operations

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, ident interface{}) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// WithTenant adds the resolved tenant ID to the context
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantKey, tenantID)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// TenantID retrieves the resolved tenant ID from the context.
// Returns "" when no tenant-protected preset ran for the request.
func TenantID(ctx context.Context) string {
	if id, ok := ctx.Value(TenantKey).(string); ok {
		return id
	}
	return ""
}

// RequestID retrieves the request ID from the context
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
