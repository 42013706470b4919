package domain

import "context"

// AuthenticatedUser is the result of a successful authentication against the
// identity provider: the user plus the token pair the provider issued.
type AuthenticatedUser struct {
	User         IdentityUser
	AccessToken  string
	RefreshToken string
}

// Invitation represents a pending organization invitation at the provider.
type Invitation struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	State          string `json:"state"`
}

// UserUpdate carries the mutable profile fields of a user. Nil fields are
// left untouched by the provider.
type UserUpdate struct {
	FirstName         *string
	LastName          *string
	ProfilePictureURL *string
}

// AuthorizationURLOptions parameterizes the provider's hosted authorization
// endpoint. OrganizationID scopes the login to a tenant, forcing SSO step-up
// when that tenant enforces verified-domain SSO.
type AuthorizationURLOptions struct {
	RedirectURI    string
	OrganizationID string
	Provider       string // e.g. "authkit", "GoogleOAuth"
	State          string
}

// IdentityProvider is the gateway to the external identity provider. It is
// the system of record for users, credentials, organizations and
// memberships. Implementations must bound every call with a timeout.
type IdentityProvider interface {
	// Users and credentials.
	CreateUser(ctx context.Context, email, password string, emailVerified bool) (*IdentityUser, error)
	GetUser(ctx context.Context, id string) (*IdentityUser, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (*IdentityUser, error)
	AuthenticateWithPassword(ctx context.Context, email, password string) (*AuthenticatedUser, error)
	AuthenticateWithCode(ctx context.Context, code string) (*AuthenticatedUser, error)
	GetAuthorizationURL(opts AuthorizationURLOptions) (string, error)

	// Password reset.
	CreatePasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	// Organizations.
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	CreateOrganization(ctx context.Context, name string) (*Organization, error)
	UpdateOrganization(ctx context.Context, id, name string) (*Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	// Memberships and invitations.
	ListMembershipsByUser(ctx context.Context, userID string) ([]*Membership, error)
	ListMembershipsByOrganization(ctx context.Context, organizationID string) ([]*Membership, error)
	CreateMembership(ctx context.Context, userID, organizationID, role string) (*Membership, error)
	DeleteMembership(ctx context.Context, membershipID string) error
	SendInvitation(ctx context.Context, email, organizationID, inviterUserID, role string) (*Invitation, error)

	// Widget tokens for embedded provider UI.
	GetWidgetToken(ctx context.Context, userID, organizationID string, scopes []string) (string, error)
}
