package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/services"
)

type signUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type sessionResponse struct {
	User domain.IdentityUser `json:"user"`
}

// SignUpHandler creates an account, authenticates it and seals the first
// session. The cookie is set only after every preceding step succeeded.
func (a *API) SignUpHandler(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}

	record, err := a.auth.SignUp(c.Request().Context(), services.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return renderError(c, err)
	}
	if err := a.sessions.Create(c, record); err != nil {
		log.Error().Err(err).Msg("Failed to seal session after sign-up")
		return renderError(c, apperrors.NewUpstreamFailure())
	}
	return c.JSON(http.StatusCreated, sessionResponse{User: record.User})
}

// SignInHandler authenticates email+password and seals a fresh session.
func (a *API) SignInHandler(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}

	record, err := a.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return renderError(c, err)
	}
	if err := a.sessions.Create(c, record); err != nil {
		log.Error().Err(err).Msg("Failed to seal session after sign-in")
		return renderError(c, apperrors.NewUpstreamFailure())
	}
	return c.JSON(http.StatusOK, sessionResponse{User: record.User})
}

// SignOutHandler clears the session cookie. Always succeeds, session or not.
func (a *API) SignOutHandler(c echo.Context) error {
	a.sessions.Delete(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CallbackHandler completes the hosted OAuth flow. Failures never render an
// error page here; the browser is sent back to the sign-in page with a short
// error code and the cause stays in the server log.
func (a *API) CallbackHandler(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, "/sign-in?error=no_code")
	}

	record, err := a.auth.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		return c.Redirect(http.StatusFound, "/sign-in?error=auth_failed")
	}
	if err := a.sessions.Create(c, record); err != nil {
		log.Error().Err(err).Msg("Failed to seal session after code exchange")
		return c.Redirect(http.StatusFound, "/sign-in?error=auth_failed")
	}
	return c.Redirect(http.StatusFound, a.appURL+"/dashboard")
}

// AuthorizeURLHandler returns the provider's hosted authorization URL so the
// frontend can start an OAuth or SSO login.
func (a *API) AuthorizeURLHandler(c echo.Context) error {
	provider := c.QueryParam("provider")
	if provider == "" {
		provider = "authkit"
	}
	authURL, err := a.orgs.AuthorizationURL(domain.AuthorizationURLOptions{
		Provider:       provider,
		OrganizationID: c.QueryParam("organizationId"),
		State:          c.QueryParam("state"),
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": authURL})
}

// PasswordResetRequestHandler starts a reset. The response is identical for
// registered and unknown emails.
func (a *API) PasswordResetRequestHandler(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	a.auth.RequestPasswordReset(c.Request().Context(), req.Email)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PasswordResetConfirmHandler finishes a reset with the emailed token.
func (a *API) PasswordResetConfirmHandler(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	if err := a.auth.CompletePasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SessionHandler returns the authenticated user behind the gate.
func (a *API) SessionHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: record.User})
}

// UpdateProfileHandler patches profile fields and re-seals the session so the
// cookie reflects the new values immediately.
func (a *API) UpdateProfileHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}

	refreshed, err := a.auth.UpdateProfile(c.Request().Context(), record, domain.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return renderError(c, err)
	}
	if err := a.sessions.Create(c, refreshed); err != nil {
		log.Error().Err(err).Msg("Failed to re-seal session after profile update")
		return renderError(c, apperrors.NewUpstreamFailure())
	}
	return c.JSON(http.StatusOK, sessionResponse{User: refreshed.User})
}
