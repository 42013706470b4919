package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atriumhq/atrium/domain"
)

type wireDomain struct {
	Domain string `json:"domain"`
	State  string `json:"state"`
}

type wireOrganization struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Domains []wireDomain `json:"domains"`
}

func (o *wireOrganization) toDomain() *domain.Organization {
	org := &domain.Organization{ID: o.ID, Name: o.Name}
	for _, d := range o.Domains {
		org.Domains = append(org.Domains, domain.OrganizationDomain{
			Domain: d.Domain,
			State:  domain.DomainState(d.State),
		})
	}
	return org
}

type wireMembership struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           struct {
		Slug string `json:"slug"`
	} `json:"role"`
}

func (m *wireMembership) toDomain() *domain.Membership {
	return &domain.Membership{
		ID:             m.ID,
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           m.Role.Slug,
	}
}

type wireMembershipList struct {
	Data []wireMembership `json:"data"`
}

// GetOrganization fetches an organization, including its domain list and
// verification states.
func (c *Client) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	var out wireOrganization
	if err := c.do(ctx, http.MethodGet, "/organizations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// CreateOrganization creates an organization at the provider.
func (c *Client) CreateOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	var out wireOrganization
	if err := c.do(ctx, http.MethodPost, "/organizations", map[string]any{"name": name}, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// UpdateOrganization renames an organization.
func (c *Client) UpdateOrganization(ctx context.Context, id, name string) (*domain.Organization, error) {
	var out wireOrganization
	if err := c.do(ctx, http.MethodPut, "/organizations/"+url.PathEscape(id), map[string]any{"name": name}, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// DeleteOrganization removes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/organizations/"+url.PathEscape(id), nil, nil)
}

// ListMembershipsByUser returns all memberships of a user.
func (c *Client) ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	var out wireMembershipList
	path := "/user_management/organization_memberships?user_id=" + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	memberships := make([]*domain.Membership, 0, len(out.Data))
	for i := range out.Data {
		memberships = append(memberships, out.Data[i].toDomain())
	}
	return memberships, nil
}

// ListMembershipsByOrganization returns all memberships of an organization.
func (c *Client) ListMembershipsByOrganization(ctx context.Context, organizationID string) ([]*domain.Membership, error) {
	var out wireMembershipList
	path := "/user_management/organization_memberships?organization_id=" + url.QueryEscape(organizationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	memberships := make([]*domain.Membership, 0, len(out.Data))
	for i := range out.Data {
		memberships = append(memberships, out.Data[i].toDomain())
	}
	return memberships, nil
}

// CreateMembership binds a user to an organization with a role.
func (c *Client) CreateMembership(ctx context.Context, userID, organizationID, role string) (*domain.Membership, error) {
	var out wireMembership
	err := c.do(ctx, http.MethodPost, "/user_management/organization_memberships", map[string]any{
		"user_id":         userID,
		"organization_id": organizationID,
		"role_slug":       role,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// DeleteMembership removes a membership by id.
func (c *Client) DeleteMembership(ctx context.Context, membershipID string) error {
	return c.do(ctx, http.MethodDelete, "/user_management/organization_memberships/"+url.PathEscape(membershipID), nil, nil)
}

// SendInvitation invites an email address into an organization.
func (c *Client) SendInvitation(ctx context.Context, email, organizationID, inviterUserID, role string) (*domain.Invitation, error) {
	var out domain.Invitation
	err := c.do(ctx, http.MethodPost, "/user_management/invitations", map[string]any{
		"email":           email,
		"organization_id": organizationID,
		"inviter_user_id": inviterUserID,
		"role_slug":       role,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWidgetToken issues a short-lived scoped token for embedded provider UI.
func (c *Client) GetWidgetToken(ctx context.Context, userID, organizationID string, scopes []string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/widgets/token", map[string]any{
		"user_id":         userID,
		"organization_id": organizationID,
		"scopes":          scopes,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}
