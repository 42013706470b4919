package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/middleware"
	"github.com/atriumhq/atrium/services"
	"github.com/atriumhq/atrium/session"
)

// API holds the HTTP handler dependencies. Handlers translate between the
// wire and the service layer; all policy lives in the services.
type API struct {
	sessions *session.Manager
	auth     *services.AuthService
	orgs     *services.OrganizationService
	widgets  *services.WidgetTokenService
	appURL   string
}

// NewAPI initializes the HTTP API. appURL is the externally visible base URL
// of the application, used as the post-authentication redirect target.
func NewAPI(
	sessions *session.Manager,
	auth *services.AuthService,
	orgs *services.OrganizationService,
	widgets *services.WidgetTokenService,
	appURL string,
) *API {
	return &API{
		sessions: sessions,
		auth:     auth,
		orgs:     orgs,
		widgets:  widgets,
		appURL:   appURL,
	}
}

// RegisterRoutes registers all API routes. The request gate decides which of
// these require a session; handlers behind it read the record from context.
func (a *API) RegisterRoutes(e *echo.Echo) {
	// Authentication flows, reachable while logged out.
	e.POST("/api/auth/sign-up", a.SignUpHandler)
	e.POST("/api/auth/sign-in", a.SignInHandler)
	e.POST("/api/auth/sign-out", a.SignOutHandler)
	e.GET("/api/auth/callback", a.CallbackHandler)
	e.GET("/api/auth/authorize-url", a.AuthorizeURLHandler)
	e.POST("/api/auth/password-reset", a.PasswordResetRequestHandler)
	e.POST("/api/auth/password-reset/confirm", a.PasswordResetConfirmHandler)

	// Session-gated surface.
	e.GET("/api/auth/user", a.SessionHandler)
	e.PATCH("/api/auth/profile", a.UpdateProfileHandler)

	e.GET("/api/organizations", a.ListOrganizationsHandler)
	e.POST("/api/organizations", a.CreateOrganizationHandler)
	e.POST("/api/organizations/switch", a.SwitchOrganizationHandler)
	e.PATCH("/api/organizations/:id", a.UpdateOrganizationHandler)
	e.DELETE("/api/organizations/:id", a.DeleteOrganizationHandler)
	e.PUT("/api/organizations/:id/logo", a.SetLogoHandler)
	e.DELETE("/api/organizations/:id/logo", a.RemoveLogoHandler)
	e.GET("/api/organizations/:id/members", a.ListMembersHandler)
	e.POST("/api/organizations/:id/invite", a.InviteMemberHandler)
	e.DELETE("/api/organizations/:id/members/:memberId", a.RemoveMemberHandler)

	e.GET("/api/widgets/token", a.WidgetTokenQueryHandler)
	e.POST("/api/widgets/token", a.WidgetTokenHandler)
}

// renderError writes an AppError as JSON with its mapped status. Unknown
// error types collapse to the generic upstream failure so internals never
// leak to the wire.
func renderError(c echo.Context, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unclassified handler error")
		appErr = apperrors.NewUpstreamFailure()
	}
	return c.JSON(appErr.HTTPStatus(), appErr)
}

// requireSession returns the gated session record, or nil after rendering a
// 401. Routes mounted behind the gate always have it; this guards direct
// mounting mistakes.
func requireSession(c echo.Context) (*domain.SessionRecord, error) {
	record, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, c.JSON(http.StatusUnauthorized, apperrors.NewInvalidSession())
	}
	return record, nil
}
