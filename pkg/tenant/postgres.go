package tenant

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresDirectory is a ResourceDirectory backed by PostgreSQL. Resource
// ownership lives in a single resources table keyed by (kind, id); tenant
// slugs live in the tenants table.
type PostgresDirectory struct {
	db *sql.DB
}

// NewPostgresDirectory creates a directory over an existing connection pool
func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// OpenPostgresDirectory opens a connection pool and wraps it
func OpenPostgresDirectory(url string) (*PostgresDirectory, *sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return NewPostgresDirectory(db), db, nil
}

// OwnerTenant returns the owning tenant of a resource
func (d *PostgresDirectory) OwnerTenant(ctx context.Context, kind, resourceID string) (string, error) {
	query := `
		SELECT tenant_id
		FROM resources
		WHERE kind = $1 AND id = $2
	`
	var tenantID string
	err := d.db.QueryRowContext(ctx, query, kind, resourceID).Scan(&tenantID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up resource owner: %w", err)
	}
	return tenantID, nil
}

// TenantBySlug returns the tenant for a slug
func (d *PostgresDirectory) TenantBySlug(ctx context.Context, slug string) (string, error) {
	query := `
		SELECT id
		FROM tenants
		WHERE slug = $1 AND status = 'active'
	`
	var tenantID string
	err := d.db.QueryRowContext(ctx, query, slug).Scan(&tenantID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up tenant by slug: %w", err)
	}
	return tenantID, nil
}

// Memberships returns the tenant IDs the user belongs to. Exposed for
// identity lookups that want the membership list from the same store.
func (d *PostgresDirectory) Memberships(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT tenant_id
		FROM tenant_members
		WHERE user_id = $1
		ORDER BY joined_at ASC
	`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		tenants = append(tenants, tenantID)
	}
	return tenants, rows.Err()
}
