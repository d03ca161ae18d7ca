package guard

import (
	"github.com/palisadehq/palisade/pkg/tenant"
	"github.com/palisadehq/palisade/pkg/validation"
)

// Preset names a fixed guard pipeline shape. The sub-check ordering inside
// a preset never varies per route.
type Preset int

const (
	// Public: rate limit only
	Public Preset = iota
	// UserPrivate: rate limit, then authenticated identity; no tenant
	// scope (account-level operations)
	UserPrivate
	// TenantProtected: rate limit, identity, tenant resolution with
	// membership check, optional shape validation
	TenantProtected
	// BrowserAccessible: TenantProtected semantics for requests that
	// cannot carry custom headers; identity may come from the session
	// cookie instead of the Authorization header
	BrowserAccessible
)

func (p Preset) String() string {
	switch p {
	case Public:
		return "public"
	case UserPrivate:
		return "userPrivate"
	case TenantProtected:
		return "tenantProtected"
	case BrowserAccessible:
		return "browserAccessible"
	default:
		return "unknown"
	}
}

// RouteConfig is the per-route guard configuration
type RouteConfig struct {
	Preset Preset

	// Resolver computes the tenant; required for TenantProtected and
	// BrowserAccessible
	Resolver tenant.Resolver

	// Schemas validate request shape; each applies to the methods it names
	Schemas []*validation.Schema

	// RateLimitPreset overrides the default rate limit preset for this
	// route; empty keeps the conservative default
	RateLimitPreset string
}
