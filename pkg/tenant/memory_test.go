package tenant

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory_Resources(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddResource("project", "proj-1", "tenant-a")
	dir.AddResource("invoice", "proj-1", "tenant-b")

	got, err := dir.OwnerTenant(context.Background(), "project", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)

	// Same ID under a different kind is a different resource
	got, err = dir.OwnerTenant(context.Background(), "invoice", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-b", got)

	_, err = dir.OwnerTenant(context.Background(), "project", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDirectory_Slugs(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddSlug("acme", "tenant-a")

	got, err := dir.TenantBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)

	_, err = dir.TenantBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDirectory_ConcurrentAccess(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddSlug("acme", "tenant-a")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir.AddResource("project", "p", "tenant-a")
			_, _ = dir.TenantBySlug(context.Background(), "acme")
			_, _ = dir.OwnerTenant(context.Background(), "project", "p")
		}()
	}
	wg.Wait()

	got, err := dir.OwnerTenant(context.Background(), "project", "p")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)
}
