package tenant

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory ResourceDirectory for tests and the
// reference server.
type MemoryDirectory struct {
	mu        sync.RWMutex
	resources map[string]map[string]string // kind -> resource ID -> tenant ID
	slugs     map[string]string            // slug -> tenant ID
}

// NewMemoryDirectory creates an empty in-memory directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		resources: make(map[string]map[string]string),
		slugs:     make(map[string]string),
	}
}

// AddResource registers a resource and its owning tenant
func (d *MemoryDirectory) AddResource(kind, resourceID, tenantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resources[kind] == nil {
		d.resources[kind] = make(map[string]string)
	}
	d.resources[kind][resourceID] = tenantID
}

// AddSlug registers a tenant slug
func (d *MemoryDirectory) AddSlug(slug, tenantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slugs[slug] = tenantID
}

// OwnerTenant returns the owning tenant of a resource
func (d *MemoryDirectory) OwnerTenant(_ context.Context, kind, resourceID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tenantID, ok := d.resources[kind][resourceID]
	if !ok {
		return "", ErrNotFound
	}
	return tenantID, nil
}

// TenantBySlug returns the tenant for a slug
func (d *MemoryDirectory) TenantBySlug(_ context.Context, slug string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tenantID, ok := d.slugs[slug]
	if !ok {
		return "", ErrNotFound
	}
	return tenantID, nil
}
