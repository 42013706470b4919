package domain

// Standard membership role slugs.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Membership binds a user to an organization with a role. The identity
// provider is authoritative for memberships; the mirror database only caches
// them for query-side convenience.
type Membership struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// OrganizationSummary is the list-view projection of an organization a user
// belongs to, produced by resolving each membership against the provider.
type OrganizationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
