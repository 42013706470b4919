package services

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
)

// widgetTokenTTL keeps cached tokens comfortably inside the provider's
// one-hour validity window.
const widgetTokenTTL = 50 * time.Minute

// WidgetTokenService issues short-lived tokens for the provider's embedded
// management widgets (user management, SSO setup). Tokens are cached per
// user, organization and scope set so a dashboard page reload does not cost
// a provider round trip.
type WidgetTokenService struct {
	provider domain.IdentityProvider
	tokens   *ttlcache.Cache[string, string]
}

// NewWidgetTokenService creates a WidgetTokenService and starts the cache
// janitor goroutine.
func NewWidgetTokenService(provider domain.IdentityProvider) *WidgetTokenService {
	c := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](widgetTokenTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go c.Start()
	return &WidgetTokenService{provider: provider, tokens: c}
}

func widgetCacheKey(userID, organizationID string, scopes []string) string {
	return userID + "|" + organizationID + "|" + strings.Join(scopes, ",")
}

// GetToken returns a widget token for the user in the given organization.
func (s *WidgetTokenService) GetToken(ctx context.Context, userID, organizationID string, scopes []string) (string, error) {
	if organizationID == "" {
		return "", apperrors.NewValidationFailure("organizationId is required")
	}

	key := widgetCacheKey(userID, organizationID, scopes)
	if item := s.tokens.Get(key); item != nil {
		return item.Value(), nil
	}

	token, err := s.provider.GetWidgetToken(ctx, userID, organizationID, scopes)
	if err != nil {
		return "", err
	}
	s.tokens.Set(key, token, ttlcache.DefaultTTL)
	return token, nil
}

// Stop terminates the cache janitor. Called on shutdown.
func (s *WidgetTokenService) Stop() {
	s.tokens.Stop()
}
