package server

import (
	"github.com/palisadehq/palisade/pkg/identity"
	"github.com/palisadehq/palisade/pkg/tenant"
)

// demoUser is a credentialed account for the standalone demo deployment.
// Real deployments replace the login handler and session lookup with their
// own identity system; the pipeline only ever sees identity.Identity.
type demoUser struct {
	password string
	identity *identity.Identity
}

func demoUsers() map[string]demoUser {
	return map[string]demoUser{
		"alice": {
			password: "alice-password",
			identity: &identity.Identity{
				UserID:            "user-alice",
				TenantMemberships: []string{"tenant-acme"},
				ActiveTenantID:    "tenant-acme",
			},
		},
		"bob": {
			password: "bob-password",
			identity: &identity.Identity{
				UserID:            "user-bob",
				TenantMemberships: []string{"tenant-globex", "tenant-acme"},
				ActiveTenantID:    "tenant-globex",
			},
		},
		"carol": {
			password: "carol-password",
			identity: &identity.Identity{
				UserID:            "user-carol",
				TenantMemberships: []string{"tenant-globex"},
			},
		},
	}
}

// DemoDirectory returns an in-memory tenant directory seeded with the demo
// tenants and a few owned resources.
func DemoDirectory() *tenant.MemoryDirectory {
	dir := tenant.NewMemoryDirectory()
	dir.AddSlug("acme", "tenant-acme")
	dir.AddSlug("globex", "tenant-globex")
	dir.AddResource("project", "proj-1", "tenant-acme")
	dir.AddResource("project", "proj-2", "tenant-globex")
	return dir
}

// DemoSessions returns an empty session store for the demo deployment
func DemoSessions() *Sessions {
	return NewSessions()
}
