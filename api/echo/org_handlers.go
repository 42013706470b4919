package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/atriumhq/atrium/errors"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type switchOrganizationRequest struct {
	OrganizationID string `json:"organizationId"`
}

type updateOrganizationRequest struct {
	Name string `json:"name"`
}

type setLogoRequest struct {
	LogoRef string `json:"logoRef"`
}

type inviteMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type widgetTokenRequest struct {
	OrganizationID string   `json:"organizationId"`
	Scopes         []string `json:"scopes"`
}

// ListOrganizationsHandler returns every organization the user belongs to,
// with their role in each.
func (a *API) ListOrganizationsHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	summaries, err := a.orgs.ListOrganizations(c.Request().Context(), record.User.ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"organizations": summaries})
}

// CreateOrganizationHandler creates a tenant with the caller as admin.
func (a *API) CreateOrganizationHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req createOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	summary, err := a.orgs.CreateOrganization(c.Request().Context(), &record.User, req.Name)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusCreated, summary)
}

// SwitchOrganizationHandler runs the switch protocol. The response either
// confirms the new context or carries a redirect URL for SSO step-up; in the
// latter case the session cookie is untouched.
func (a *API) SwitchOrganizationHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req switchOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	result, err := a.orgs.SwitchOrganization(c.Request().Context(), &record.User, req.OrganizationID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateOrganizationHandler renames a tenant. Admin only, enforced in the
// service.
func (a *API) UpdateOrganizationHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req updateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	org, err := a.orgs.UpdateOrganization(c.Request().Context(), &record.User, c.Param("id"), req.Name)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// DeleteOrganizationHandler deletes a tenant. Admin only.
func (a *API) DeleteOrganizationHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	if err := a.orgs.DeleteOrganization(c.Request().Context(), &record.User, c.Param("id")); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SetLogoHandler stores an organization logo storage reference. Admin only.
func (a *API) SetLogoHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req setLogoRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	if err := a.orgs.SetLogo(c.Request().Context(), &record.User, c.Param("id"), req.LogoRef); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RemoveLogoHandler clears an organization logo storage reference. Admin
// only.
func (a *API) RemoveLogoHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	if err := a.orgs.RemoveLogo(c.Request().Context(), &record.User, c.Param("id")); err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListMembersHandler lists the memberships of an organization.
func (a *API) ListMembersHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	members, err := a.orgs.ListMembers(c.Request().Context(), &record.User, c.Param("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

// InviteMemberHandler sends an invitation. Admin only.
func (a *API) InviteMemberHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req inviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	invitation, err := a.orgs.InviteMember(c.Request().Context(), &record.User, c.Param("id"), req.Email, req.Role)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusCreated, invitation)
}

// RemoveMemberHandler removes a membership. Admin only.
func (a *API) RemoveMemberHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	err = a.orgs.RemoveMember(c.Request().Context(), &record.User, c.Param("id"), c.Param("memberId"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// WidgetTokenQueryHandler is the GET form of the widget token endpoint:
// organizationId and a comma-separated scopes list as query parameters.
func (a *API) WidgetTokenQueryHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var scopes []string
	if raw := c.QueryParam("scopes"); raw != "" {
		scopes = strings.Split(raw, ",")
	}
	token, err := a.widgets.GetToken(c.Request().Context(), record.User.ID, c.QueryParam("organizationId"), scopes)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// WidgetTokenHandler issues a provider widget token for the embedded
// management UI.
func (a *API) WidgetTokenHandler(c echo.Context) error {
	record, err := requireSession(c)
	if record == nil {
		return err
	}
	var req widgetTokenRequest
	if err := c.Bind(&req); err != nil {
		return renderError(c, apperrors.NewValidationFailure("invalid request body"))
	}
	token, err := a.widgets.GetToken(c.Request().Context(), record.User.ID, req.OrganizationID, req.Scopes)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
