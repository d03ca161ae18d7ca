package tenant

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a ResourceDirectory when the addressed
// resource or tenant does not exist. The guard composer maps it to 404.
var ErrNotFound = errors.New("tenant: not found")

// ResourceDirectory answers "which tenant owns resource X". It is the one
// data lookup the pipeline is allowed to perform per request.
type ResourceDirectory interface {
	// OwnerTenant returns the tenant ID owning the resource of the given
	// kind ("project", "document", ...). Returns ErrNotFound when no such
	// resource exists.
	OwnerTenant(ctx context.Context, kind, resourceID string) (string, error)

	// TenantBySlug returns the tenant ID for a URL slug. Returns
	// ErrNotFound when the slug names no tenant.
	TenantBySlug(ctx context.Context, slug string) (string, error)
}
