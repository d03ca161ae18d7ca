package tenant

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/palisadehq/palisade/pkg/identity"
)

// Resolver computes the single tenant a request is allowed to act on.
//
// Contract: ("", nil) means the caller is not entitled to any tenant here
// (composer answers 403). ErrNotFound means there was nothing to resolve
// against (composer answers 404). Any other error is a pipeline failure
// (composer answers 500). Resolvers never panic and never return a tenant
// the identity is not a member of.
type Resolver interface {
	// Resolve computes the tenant for this request. Runs once per request,
	// before the handler; results are never reused across requests.
	Resolve(ctx context.Context, r *http.Request, ident *identity.Identity) (string, error)

	// Strategy names the resolver for logs and metrics
	Strategy() string
}

// FromUser resolves the tenant already bound to the identity: the active
// tenant selected at login, or the sole membership for single-tenant users.
type FromUser struct{}

// NewFromUser creates the identity-bound resolver
func NewFromUser() FromUser { return FromUser{} }

// Resolve returns the identity's default tenant
func (FromUser) Resolve(_ context.Context, _ *http.Request, ident *identity.Identity) (string, error) {
	tenantID := ident.DefaultTenant()
	if tenantID == "" {
		return "", nil
	}
	// DefaultTenant only returns memberships, but the invariant is cheap to
	// hold explicitly: never hand back a tenant the caller is not in.
	if !ident.IsMember(tenantID) {
		return "", nil
	}
	return tenantID, nil
}

// Strategy names the resolver
func (FromUser) Strategy() string { return "from_user" }

// FromSlug resolves the tenant from a URL path segment naming it, then
// verifies the caller's membership.
type FromSlug struct {
	// Param is the mux route variable holding the slug, e.g. "tenant_slug"
	Param     string
	Directory ResourceDirectory
}

// NewFromSlug creates a slug-based resolver reading the given route variable
func NewFromSlug(param string, dir ResourceDirectory) FromSlug {
	return FromSlug{Param: param, Directory: dir}
}

// Resolve looks up the slug and cross-checks membership
func (s FromSlug) Resolve(ctx context.Context, r *http.Request, ident *identity.Identity) (string, error) {
	slug := mux.Vars(r)[s.Param]
	if slug == "" {
		return "", ErrNotFound
	}

	tenantID, err := s.Directory.TenantBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	if !ident.IsMember(tenantID) {
		return "", nil
	}
	return tenantID, nil
}

// Strategy names the resolver
func (FromSlug) Strategy() string { return "from_slug" }

// FromResource resolves the owning tenant of a resource addressed in the
// route, then verifies the caller's membership in that tenant.
//
// The membership cross-check is the load-bearing line: returning the
// resource's owner without it would let any authenticated user reach
// another tenant's data by guessing resource IDs.
type FromResource struct {
	// Kind is the resource kind passed to the directory, e.g. "project"
	Kind string
	// Param is the mux route variable holding the resource ID
	Param     string
	Directory ResourceDirectory
}

// NewFromResource creates a resource-owner resolver
func NewFromResource(kind, param string, dir ResourceDirectory) FromResource {
	return FromResource{Kind: kind, Param: param, Directory: dir}
}

// Resolve looks up the resource owner and cross-checks membership
func (f FromResource) Resolve(ctx context.Context, r *http.Request, ident *identity.Identity) (string, error) {
	resourceID := mux.Vars(r)[f.Param]
	if resourceID == "" {
		return "", ErrNotFound
	}

	ownerTenant, err := f.Directory.OwnerTenant(ctx, f.Kind, resourceID)
	if err != nil {
		return "", err
	}

	if !ident.IsMember(ownerTenant) {
		return "", nil
	}
	return ownerTenant, nil
}

// Strategy names the resolver
func (f FromResource) Strategy() string {
	return fmt.Sprintf("from_resource:%s", f.Kind)
}
