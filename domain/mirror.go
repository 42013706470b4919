package domain

import "time"

// MirrorUser is the denormalized copy of an identity-provider user stored in
// the mirror database. Keyed by the provider's user id; membership/role data
// here is a cache, never the source of truth.
type MirrorUser struct {
	ID             string    `bson:"_id,omitempty"`
	ProviderID     string    `bson:"provider_id"` // identity provider user id, unique
	Email          string    `bson:"email"`
	FirstName      string    `bson:"first_name,omitempty"`
	LastName       string    `bson:"last_name,omitempty"`
	ImageURL       string    `bson:"image_url,omitempty"`
	OrganizationID string    `bson:"organization_id,omitempty"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

// MirrorOrganization is the denormalized copy of an organization, extended
// with app-specific fields the identity provider does not store.
type MirrorOrganization struct {
	ID         string    `bson:"_id,omitempty"`
	ProviderID string    `bson:"provider_id"` // identity provider org id, unique
	Name       string    `bson:"name"`
	LogoRef    string    `bson:"logo_ref,omitempty"` // file storage reference
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}
