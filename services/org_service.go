package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/atriumhq/atrium/cache"
	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/internal/audit"
	"github.com/atriumhq/atrium/internal/metrics"
)

// membershipCacheTTL bounds how stale a cached membership list may be.
const membershipCacheTTL = time.Minute

// SwitchResult is the outcome of a switch request. Exactly one of
// RedirectURL (step-up required) or OrganizationID (context updated in
// place) is set.
type SwitchResult struct {
	Success        bool   `json:"success"`
	OrganizationID string `json:"organizationId,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
}

// OrganizationService implements organization resolution and the switch
// protocol.
type OrganizationService struct {
	provider    domain.IdentityProvider
	memberships cache.MembershipStore
	sync        *SyncService
	redirectURI string
}

// NewOrganizationService creates an OrganizationService. redirectURI is the
// OAuth callback this app registered with the provider; step-up redirects
// land there.
func NewOrganizationService(provider domain.IdentityProvider, memberships cache.MembershipStore, sync *SyncService, redirectURI string) *OrganizationService {
	if memberships == nil {
		memberships = cache.NoopMembershipStore{}
	}
	return &OrganizationService{
		provider:    provider,
		memberships: memberships,
		sync:        sync,
		redirectURI: redirectURI,
	}
}

// AuthorizationURL builds the provider's hosted authorization URL with this
// app's registered callback filled in.
func (s *OrganizationService) AuthorizationURL(opts domain.AuthorizationURLOptions) (string, error) {
	opts.RedirectURI = s.redirectURI
	url, err := s.provider.GetAuthorizationURL(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build authorization URL")
		return "", apperrors.NewUpstreamFailure()
	}
	return url, nil
}

// listMemberships returns the user's memberships, served from the cache
// when fresh. The provider remains authoritative; a miss or stale entry
// falls through to it.
func (s *OrganizationService) listMemberships(ctx context.Context, userID string) ([]*domain.Membership, error) {
	if cached, ok := s.memberships.Get(ctx, userID); ok {
		return cached, nil
	}
	memberships, err := s.provider.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.memberships.Set(ctx, userID, memberships, membershipCacheTTL); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to cache memberships")
	}
	return memberships, nil
}

func (s *OrganizationService) membershipIn(ctx context.Context, userID, organizationID string) (*domain.Membership, error) {
	memberships, err := s.listMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		if m.OrganizationID == organizationID {
			return m, nil
		}
	}
	return nil, nil
}

// ListOrganizations resolves each membership's organization via the
// provider as a fan-out of per-membership lookups. Result order is not
// guaranteed to match membership creation order; callers must not depend
// on it.
func (s *OrganizationService) ListOrganizations(ctx context.Context, userID string) ([]*domain.OrganizationSummary, error) {
	memberships, err := s.listMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.OrganizationSummary, len(memberships))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range memberships {
		g.Go(func() error {
			org, err := s.provider.GetOrganization(gctx, m.OrganizationID)
			if err != nil {
				return err
			}
			summaries[i] = &domain.OrganizationSummary{
				ID:   org.ID,
				Name: org.Name,
				Role: m.Role,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// CreateOrganization creates a tenant and makes the caller its admin. This
// is the only path by which a user without an organization gains one, and
// the only path that elevates a role to admin.
func (s *OrganizationService) CreateOrganization(ctx context.Context, user *domain.IdentityUser, name string) (*domain.OrganizationSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationFailure("organization name is required")
	}

	org, err := s.provider.CreateOrganization(ctx, name)
	if err != nil {
		audit.Log("OrganizationService", "Create", user.ID, "", "Organization creation failed", false, err)
		return nil, err
	}

	// The creator is always admin, non-overridable.
	if _, err := s.provider.CreateMembership(ctx, user.ID, org.ID, domain.RoleAdmin); err != nil {
		audit.Log("OrganizationService", "Create", user.ID, org.ID, "Creator membership failed", false, err)
		return nil, err
	}

	s.sync.SyncOrganization(ctx, org)
	s.sync.SetUserRole(ctx, user.ID, org.ID, domain.RoleAdmin)
	if err := s.memberships.Invalidate(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to invalidate membership cache")
	}

	audit.Log("OrganizationService", "Create", user.ID, org.ID, "Organization created", true, nil)
	return &domain.OrganizationSummary{ID: org.ID, Name: org.Name, Role: domain.RoleAdmin}, nil
}

// SwitchOrganization executes the switch protocol:
//
//	requiresStepUp  member  result
//	false           yes     context updated in place
//	false           no      Forbidden
//	true            yes     redirect to SSO re-auth, context unchanged
//	true            no      Forbidden (checked before computing redirect)
//
// On step-up the session is not mutated here; it is replaced only after the
// user completes re-auth and lands on the OAuth callback flow.
func (s *OrganizationService) SwitchOrganization(ctx context.Context, user *domain.IdentityUser, targetOrgID string) (*SwitchResult, error) {
	if targetOrgID == "" {
		return nil, apperrors.NewValidationFailure("organizationId is required")
	}

	membership, err := s.membershipIn(ctx, user.ID, targetOrgID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		metrics.SwitchForbiddenTotal.Inc()
		audit.Log("OrganizationService", "Switch", user.ID, targetOrgID, "Switch without membership rejected", false, nil)
		return nil, apperrors.NewForbidden("not a member of this organization")
	}

	org, err := s.provider.GetOrganization(ctx, targetOrgID)
	if err != nil {
		return nil, err
	}

	if org.RequiresStepUp() {
		redirectURL, err := s.provider.GetAuthorizationURL(domain.AuthorizationURLOptions{
			RedirectURI:    s.redirectURI,
			OrganizationID: targetOrgID,
			Provider:       "authkit",
		})
		if err != nil {
			log.Error().Err(err).Str("organization_id", targetOrgID).Msg("Failed to build step-up redirect")
			return nil, apperrors.NewUpstreamFailure()
		}
		metrics.StepUpRedirectTotal.Inc()
		audit.Log("OrganizationService", "Switch", user.ID, targetOrgID, "Step-up re-auth required", true, nil)
		return &SwitchResult{RedirectURL: redirectURL}, nil
	}

	s.sync.SetUserRole(ctx, user.ID, targetOrgID, membership.Role)

	metrics.OrgSwitchTotal.Inc()
	audit.Log("OrganizationService", "Switch", user.ID, targetOrgID, "Context switched in place", true, nil)
	return &SwitchResult{Success: true, OrganizationID: targetOrgID}, nil
}

// requireAdmin verifies the caller holds the admin role in the
// organization. Enforced server-side; the dashboard hiding buttons is not
// an access control.
func (s *OrganizationService) requireAdmin(ctx context.Context, userID, organizationID string) error {
	membership, err := s.membershipIn(ctx, userID, organizationID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperrors.NewForbidden("not a member of this organization")
	}
	if membership.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// UpdateOrganization renames a tenant. Admin only.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, user *domain.IdentityUser, organizationID, name string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationFailure("organization name is required")
	}
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return nil, err
	}

	org, err := s.provider.UpdateOrganization(ctx, organizationID, name)
	if err != nil {
		return nil, err
	}
	s.sync.SyncOrganization(ctx, org)
	audit.Log("OrganizationService", "Update", user.ID, organizationID, "Organization renamed", true, nil)
	return org, nil
}

// DeleteOrganization removes a tenant. Admin only.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, user *domain.IdentityUser, organizationID string) error {
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return err
	}
	if err := s.provider.DeleteOrganization(ctx, organizationID); err != nil {
		return err
	}
	s.sync.DeleteOrganizationMirror(ctx, organizationID)
	if err := s.memberships.Invalidate(ctx, user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to invalidate membership cache")
	}
	audit.Log("OrganizationService", "Delete", user.ID, organizationID, "Organization deleted", true, nil)
	return nil
}

// SetLogo stores the logo storage reference on the mirror record. Admin
// only. The logo lives only in the mirror; the provider has no field for it.
func (s *OrganizationService) SetLogo(ctx context.Context, user *domain.IdentityUser, organizationID, logoRef string) error {
	if strings.TrimSpace(logoRef) == "" {
		return apperrors.NewValidationFailure("logoRef is required")
	}
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return err
	}
	if err := s.sync.SaveOrganizationLogo(ctx, organizationID, logoRef); err != nil {
		return err
	}
	audit.Log("OrganizationService", "SetLogo", user.ID, organizationID, "Logo reference updated", true, nil)
	return nil
}

// RemoveLogo clears the logo storage reference. Admin only.
func (s *OrganizationService) RemoveLogo(ctx context.Context, user *domain.IdentityUser, organizationID string) error {
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return err
	}
	if err := s.sync.DeleteOrganizationLogo(ctx, organizationID); err != nil {
		return err
	}
	audit.Log("OrganizationService", "RemoveLogo", user.ID, organizationID, "Logo reference removed", true, nil)
	return nil
}

// InviteMember sends a provider invitation. Admin only.
func (s *OrganizationService) InviteMember(ctx context.Context, user *domain.IdentityUser, organizationID, email, role string) (*domain.Invitation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationFailure("email is required")
	}
	if role == "" {
		role = domain.RoleMember
	}
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return nil, err
	}

	invitation, err := s.provider.SendInvitation(ctx, email, organizationID, user.ID, role)
	if err != nil {
		return nil, err
	}
	audit.Log("OrganizationService", "Invite", user.ID, organizationID, "Invitation sent to "+email, true, nil)
	return invitation, nil
}

// ListMembers returns the memberships of an organization. Any member may
// look.
func (s *OrganizationService) ListMembers(ctx context.Context, user *domain.IdentityUser, organizationID string) ([]*domain.Membership, error) {
	membership, err := s.membershipIn(ctx, user.ID, organizationID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.NewForbidden("not a member of this organization")
	}
	return s.provider.ListMembershipsByOrganization(ctx, organizationID)
}

// RemoveMember deletes a membership. Admin only. The removed user's cached
// membership list is invalidated so the change is visible immediately.
func (s *OrganizationService) RemoveMember(ctx context.Context, user *domain.IdentityUser, organizationID, membershipID string) error {
	if err := s.requireAdmin(ctx, user.ID, organizationID); err != nil {
		return err
	}

	members, err := s.provider.ListMembershipsByOrganization(ctx, organizationID)
	if err != nil {
		return err
	}
	var removed *domain.Membership
	for _, m := range members {
		if m.ID == membershipID {
			removed = m
			break
		}
	}
	if removed == nil {
		return apperrors.NewValidationFailure("membership not found in this organization")
	}

	if err := s.provider.DeleteMembership(ctx, membershipID); err != nil {
		return err
	}
	if err := s.memberships.Invalidate(ctx, removed.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", removed.UserID).Msg("Failed to invalidate membership cache")
	}
	audit.Log("OrganizationService", "RemoveMember", user.ID, organizationID, "Membership "+membershipID+" removed", true, nil)
	return nil
}
