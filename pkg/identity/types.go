package identity

// Identity is the already-authenticated caller the pipeline consumes.
// Credential issuance and session storage live outside this module; the
// provider hands the pipeline a user ID and an established tenant
// membership list.
type Identity struct {
	UserID string `json:"user_id"`

	// TenantMemberships lists every tenant the user belongs to.
	TenantMemberships []string `json:"tenant_memberships"`

	// ActiveTenantID is the tenant selected at login time, when the
	// application supports an explicit "current tenant" choice. Empty when
	// no selection was made.
	ActiveTenantID string `json:"active_tenant_id,omitempty"`
}

// IsMember reports whether the identity belongs to the given tenant
func (i *Identity) IsMember(tenantID string) bool {
	if i == nil || tenantID == "" {
		return false
	}
	for _, t := range i.TenantMemberships {
		if t == tenantID {
			return true
		}
	}
	return false
}

// DefaultTenant returns the active tenant when set, otherwise the sole
// membership for single-tenant users, otherwise "".
func (i *Identity) DefaultTenant() string {
	if i == nil {
		return ""
	}
	if i.ActiveTenantID != "" {
		return i.ActiveTenantID
	}
	if len(i.TenantMemberships) == 1 {
		return i.TenantMemberships[0]
	}
	return ""
}
