package domain

import "context"

// UserMirrorRepository stores denormalized identity-provider user records.
// SyncFromProvider must be an upsert keyed by the provider user id: inserting
// on first sight and patching mutable fields afterwards, so repeated syncs
// with identical input never create duplicates.
type UserMirrorRepository interface {
	SyncFromProvider(ctx context.Context, user *IdentityUser, organizationID string) (*MirrorUser, error)
	GetByProviderID(ctx context.Context, providerID string) (*MirrorUser, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*MirrorUser, error)
	SetRole(ctx context.Context, providerID, organizationID, role string) error
}

// OrganizationMirrorRepository stores denormalized organization records plus
// app-specific extensions (logo storage reference).
type OrganizationMirrorRepository interface {
	SyncFromProvider(ctx context.Context, org *Organization) (*MirrorOrganization, error)
	GetByProviderID(ctx context.Context, providerID string) (*MirrorOrganization, error)
	SaveLogo(ctx context.Context, providerID, logoRef string) error
	DeleteLogo(ctx context.Context, providerID string) error
	Delete(ctx context.Context, providerID string) error
}
