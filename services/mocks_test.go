package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/atriumhq/atrium/domain"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateUser(ctx context.Context, email, password string, emailVerified bool) (*domain.IdentityUser, error) {
	args := m.Called(ctx, email, password, emailVerified)
	if u := args.Get(0); u != nil {
		return u.(*domain.IdentityUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetUser(ctx context.Context, id string) (*domain.IdentityUser, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.IdentityUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.IdentityUser, error) {
	args := m.Called(ctx, id, update)
	if u := args.Get(0); u != nil {
		return u.(*domain.IdentityUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) AuthenticateWithPassword(ctx context.Context, email, password string) (*domain.AuthenticatedUser, error) {
	args := m.Called(ctx, email, password)
	if a := args.Get(0); a != nil {
		return a.(*domain.AuthenticatedUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) AuthenticateWithCode(ctx context.Context, code string) (*domain.AuthenticatedUser, error) {
	args := m.Called(ctx, code)
	if a := args.Get(0); a != nil {
		return a.(*domain.AuthenticatedUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetAuthorizationURL(opts domain.AuthorizationURLOptions) (string, error) {
	args := m.Called(opts)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *mockProvider) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*domain.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CreateOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	args := m.Called(ctx, name)
	if o := args.Get(0); o != nil {
		return o.(*domain.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) UpdateOrganization(ctx context.Context, id, name string) (*domain.Organization, error) {
	args := m.Called(ctx, id, name)
	if o := args.Get(0); o != nil {
		return o.(*domain.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) DeleteOrganization(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProvider) ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	args := m.Called(ctx, userID)
	if l := args.Get(0); l != nil {
		return l.([]*domain.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) ListMembershipsByOrganization(ctx context.Context, organizationID string) ([]*domain.Membership, error) {
	args := m.Called(ctx, organizationID)
	if l := args.Get(0); l != nil {
		return l.([]*domain.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) CreateMembership(ctx context.Context, userID, organizationID, role string) (*domain.Membership, error) {
	args := m.Called(ctx, userID, organizationID, role)
	if mb := args.Get(0); mb != nil {
		return mb.(*domain.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) DeleteMembership(ctx context.Context, membershipID string) error {
	return m.Called(ctx, membershipID).Error(0)
}

func (m *mockProvider) SendInvitation(ctx context.Context, email, organizationID, inviterUserID, role string) (*domain.Invitation, error) {
	args := m.Called(ctx, email, organizationID, inviterUserID, role)
	if i := args.Get(0); i != nil {
		return i.(*domain.Invitation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetWidgetToken(ctx context.Context, userID, organizationID string, scopes []string) (string, error) {
	args := m.Called(ctx, userID, organizationID, scopes)
	return args.String(0), args.Error(1)
}

var _ domain.IdentityProvider = (*mockProvider)(nil)

type mockUserMirrorRepo struct {
	mock.Mock
}

func (m *mockUserMirrorRepo) SyncFromProvider(ctx context.Context, user *domain.IdentityUser, organizationID string) (*domain.MirrorUser, error) {
	args := m.Called(ctx, user, organizationID)
	if u := args.Get(0); u != nil {
		return u.(*domain.MirrorUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserMirrorRepo) GetByProviderID(ctx context.Context, providerID string) (*domain.MirrorUser, error) {
	args := m.Called(ctx, providerID)
	if u := args.Get(0); u != nil {
		return u.(*domain.MirrorUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserMirrorRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.MirrorUser, error) {
	args := m.Called(ctx, organizationID)
	if l := args.Get(0); l != nil {
		return l.([]*domain.MirrorUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserMirrorRepo) SetRole(ctx context.Context, providerID, organizationID, role string) error {
	return m.Called(ctx, providerID, organizationID, role).Error(0)
}

var _ domain.UserMirrorRepository = (*mockUserMirrorRepo)(nil)

type mockOrgMirrorRepo struct {
	mock.Mock
}

func (m *mockOrgMirrorRepo) SyncFromProvider(ctx context.Context, org *domain.Organization) (*domain.MirrorOrganization, error) {
	args := m.Called(ctx, org)
	if o := args.Get(0); o != nil {
		return o.(*domain.MirrorOrganization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrgMirrorRepo) GetByProviderID(ctx context.Context, providerID string) (*domain.MirrorOrganization, error) {
	args := m.Called(ctx, providerID)
	if o := args.Get(0); o != nil {
		return o.(*domain.MirrorOrganization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrgMirrorRepo) SaveLogo(ctx context.Context, providerID, logoRef string) error {
	return m.Called(ctx, providerID, logoRef).Error(0)
}

func (m *mockOrgMirrorRepo) DeleteLogo(ctx context.Context, providerID string) error {
	return m.Called(ctx, providerID).Error(0)
}

func (m *mockOrgMirrorRepo) Delete(ctx context.Context, providerID string) error {
	return m.Called(ctx, providerID).Error(0)
}

var _ domain.OrganizationMirrorRepository = (*mockOrgMirrorRepo)(nil)

type mockMembershipStore struct {
	mock.Mock
}

func (m *mockMembershipStore) Get(ctx context.Context, userID string) ([]*domain.Membership, bool) {
	args := m.Called(ctx, userID)
	if l := args.Get(0); l != nil {
		return l.([]*domain.Membership), args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *mockMembershipStore) Set(ctx context.Context, userID string, memberships []*domain.Membership, ttl time.Duration) error {
	return m.Called(ctx, userID, memberships, ttl).Error(0)
}

func (m *mockMembershipStore) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
