package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/internal/audit"
	"github.com/atriumhq/atrium/internal/metrics"
)

// errInvalidCredentials is the single message returned for every credential
// failure. A non-existent email and a wrong password must be
// indistinguishable to the caller.
var errInvalidCredentials = &apperrors.AppError{
	Code:    apperrors.Unauthorized,
	Message: "Invalid email or password",
}

// AuthService implements the authentication flows: sign-up, sign-in, OAuth
// code exchange, and password reset. Each flow either returns a complete
// SessionRecord (sealed into a cookie by the caller as the final step) or a
// typed failure; no partial session is ever produced.
type AuthService struct {
	provider domain.IdentityProvider
	sync     *SyncService
}

// NewAuthService creates an AuthService.
func NewAuthService(provider domain.IdentityProvider, sync *SyncService) *AuthService {
	return &AuthService{provider: provider, sync: sync}
}

// SignUpInput carries the sign-up form fields.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignUp creates the user at the provider, authenticates with the same
// credentials, and mirrors the user. Steps execute strictly in that order:
// each step's output is required input to the next, and any failure aborts
// the whole flow before a session exists.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.SessionRecord, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.NewValidationFailure("email and password are required")
	}

	created, err := s.provider.CreateUser(ctx, email, in.Password, true)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("SignUp: user creation failed")
		audit.Log("AuthService", "SignUp", email, "", "User creation failed", false, err)
		return nil, err
	}

	if in.FirstName != "" || in.LastName != "" {
		update := domain.UserUpdate{}
		if in.FirstName != "" {
			update.FirstName = &in.FirstName
		}
		if in.LastName != "" {
			update.LastName = &in.LastName
		}
		if updated, err := s.provider.UpdateUser(ctx, created.ID, update); err == nil {
			created = updated
		} else {
			// Name fields are cosmetic; the account exists, keep going.
			log.Warn().Err(err).Str("user_id", created.ID).Msg("SignUp: failed to set name fields")
		}
	}

	authed, err := s.provider.AuthenticateWithPassword(ctx, email, in.Password)
	if err != nil {
		log.Error().Err(err).Str("user_id", created.ID).Msg("SignUp: post-creation authentication failed")
		audit.Log("AuthService", "SignUp", created.ID, "", "Post-creation authentication failed", false, err)
		return nil, err
	}

	s.sync.SyncUser(ctx, &authed.User, "")

	metrics.SignupSuccessTotal.Inc()
	audit.Log("AuthService", "SignUp", authed.User.ID, "", "Sign-up completed", true, nil)
	return &domain.SessionRecord{
		User:         authed.User,
		AccessToken:  authed.AccessToken,
		RefreshToken: authed.RefreshToken,
	}, nil
}

// SignIn authenticates email+password. Every credential failure maps to the
// same generic message so the response never reveals whether the email
// exists.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.SessionRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginFailureTotal.Inc()
		return nil, errInvalidCredentials
	}

	authed, err := s.provider.AuthenticateWithPassword(ctx, email, password)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("SignIn: authentication failed")
		audit.Log("AuthService", "SignIn", email, "", "Authentication failed", false, err)
		metrics.LoginFailureTotal.Inc()
		return nil, errInvalidCredentials
	}

	s.sync.SyncUser(ctx, &authed.User, "")

	metrics.LoginSuccessTotal.Inc()
	audit.Log("AuthService", "SignIn", authed.User.ID, "", "Sign-in completed", true, nil)
	return &domain.SessionRecord{
		User:         authed.User,
		AccessToken:  authed.AccessToken,
		RefreshToken: authed.RefreshToken,
	}, nil
}

// ExchangeCode completes the OAuth authorization-code flow. The caller
// (callback handler) turns errors into a redirect with a short error code;
// the underlying cause is logged here, never exposed.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*domain.SessionRecord, error) {
	metrics.OAuthCallbackTotal.Inc()

	authed, err := s.provider.AuthenticateWithCode(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("ExchangeCode: code exchange failed")
		audit.Log("AuthService", "ExchangeCode", "", "", "Code exchange failed", false, err)
		return nil, err
	}

	s.sync.SyncUser(ctx, &authed.User, "")

	metrics.LoginSuccessTotal.Inc()
	audit.Log("AuthService", "ExchangeCode", authed.User.ID, "", "Code exchange completed", true, nil)
	return &domain.SessionRecord{
		User:         authed.User,
		AccessToken:  authed.AccessToken,
		RefreshToken: authed.RefreshToken,
	}, nil
}

// UpdateProfile patches mutable profile fields at the provider, re-mirrors
// the user and returns the refreshed record for re-sealing.
func (s *AuthService) UpdateProfile(ctx context.Context, record *domain.SessionRecord, update domain.UserUpdate) (*domain.SessionRecord, error) {
	updated, err := s.provider.UpdateUser(ctx, record.User.ID, update)
	if err != nil {
		log.Error().Err(err).Str("user_id", record.User.ID).Msg("UpdateProfile: provider update failed")
		return nil, err
	}

	s.sync.SyncUser(ctx, updated, "")

	audit.Log("AuthService", "UpdateProfile", updated.ID, "", "Profile updated", true, nil)
	return &domain.SessionRecord{
		User:         *updated,
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
	}, nil
}

// RequestPasswordReset starts a password reset. It returns success for
// every input: whether the email is registered must not be observable from
// the response. Provider failures are logged and suppressed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	if err := s.provider.CreatePasswordReset(ctx, email); err != nil {
		log.Warn().Err(err).Msg("RequestPasswordReset: provider call failed (suppressed)")
	}
	audit.Log("AuthService", "RequestPasswordReset", email, "", "Password reset requested", true, nil)
}

// CompletePasswordReset finishes a reset. Token validity and expiry are the
// provider's call; its rejection surfaces as one generic message.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.NewValidationFailure("token and new password are required")
	}
	if err := s.provider.ResetPassword(ctx, token, newPassword); err != nil {
		log.Warn().Err(err).Msg("CompletePasswordReset: provider rejected reset")
		audit.Log("AuthService", "CompletePasswordReset", "", "", "Reset rejected", false, err)
		return apperrors.NewValidationFailure("failed to reset password")
	}
	audit.Log("AuthService", "CompletePasswordReset", "", "", "Reset completed", true, nil)
	return nil
}
