package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/internal/metrics"
)

// SyncService is the tenant sync bridge: it propagates identity-provider
// user/organization facts into the mirror database so dashboard queries can
// be scoped by organization without re-querying the provider.
//
// Sync failures are logged and swallowed. The session is the authoritative
// "you are logged in" signal; mirror lag is tolerable and must never abort
// the authentication flow that triggered the sync.
type SyncService struct {
	users domain.UserMirrorRepository
	orgs  domain.OrganizationMirrorRepository
}

// NewSyncService creates a SyncService. Either repository may be nil when
// the mirror database is unconfigured; syncs are then skipped with a
// warning.
func NewSyncService(users domain.UserMirrorRepository, orgs domain.OrganizationMirrorRepository) *SyncService {
	return &SyncService{users: users, orgs: orgs}
}

// SyncUser upserts the mirror record for an identity user. Idempotent:
// repeated calls with identical input leave exactly one record.
func (s *SyncService) SyncUser(ctx context.Context, user *domain.IdentityUser, organizationID string) {
	if s.users == nil {
		log.Warn().Msg("Mirror database unconfigured, skipping user sync")
		return
	}
	if _, err := s.users.SyncFromProvider(ctx, user, organizationID); err != nil {
		metrics.MirrorSyncFailureTotal.Inc()
		log.Error().Err(err).Str("provider_id", user.ID).Msg("User mirror sync failed, continuing")
	}
}

// SyncOrganization upserts the mirror record for an organization.
func (s *SyncService) SyncOrganization(ctx context.Context, org *domain.Organization) {
	if s.orgs == nil {
		log.Warn().Msg("Mirror database unconfigured, skipping organization sync")
		return
	}
	if _, err := s.orgs.SyncFromProvider(ctx, org); err != nil {
		metrics.MirrorSyncFailureTotal.Inc()
		log.Error().Err(err).Str("provider_id", org.ID).Msg("Organization mirror sync failed, continuing")
	}
}

// SetUserRole mirrors a role/organization change. Admin elevation only ever
// originates from the organization-creation path; syncs never promote.
func (s *SyncService) SetUserRole(ctx context.Context, providerID, organizationID, role string) {
	if s.users == nil {
		return
	}
	if err := s.users.SetRole(ctx, providerID, organizationID, role); err != nil {
		metrics.MirrorSyncFailureTotal.Inc()
		log.Error().Err(err).Str("provider_id", providerID).Msg("User role mirror sync failed, continuing")
	}
}

// SaveOrganizationLogo writes the logo storage reference, an app-specific
// extension the provider does not store. Unlike syncs this is a user-facing
// write, so failures surface to the caller.
func (s *SyncService) SaveOrganizationLogo(ctx context.Context, providerID, logoRef string) error {
	if s.orgs == nil {
		return apperrors.NewUpstreamFailure()
	}
	if err := s.orgs.SaveLogo(ctx, providerID, logoRef); err != nil {
		log.Error().Err(err).Str("provider_id", providerID).Msg("Failed to save organization logo reference")
		return apperrors.NewUpstreamFailure()
	}
	return nil
}

// DeleteOrganizationLogo clears the logo storage reference.
func (s *SyncService) DeleteOrganizationLogo(ctx context.Context, providerID string) error {
	if s.orgs == nil {
		return apperrors.NewUpstreamFailure()
	}
	if err := s.orgs.DeleteLogo(ctx, providerID); err != nil {
		log.Error().Err(err).Str("provider_id", providerID).Msg("Failed to delete organization logo reference")
		return apperrors.NewUpstreamFailure()
	}
	return nil
}

// DeleteOrganizationMirror drops the mirror record of a deleted org.
func (s *SyncService) DeleteOrganizationMirror(ctx context.Context, providerID string) {
	if s.orgs == nil {
		return
	}
	if err := s.orgs.Delete(ctx, providerID); err != nil {
		metrics.MirrorSyncFailureTotal.Inc()
		log.Error().Err(err).Str("provider_id", providerID).Msg("Organization mirror delete failed, continuing")
	}
}
