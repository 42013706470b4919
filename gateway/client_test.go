package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "sk_test_123",
		ClientID: "client_abc",
	})
}

func TestAuthenticateWithPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user_management/authenticate", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "password", body["grant_type"])
		assert.Equal(t, "client_abc", body["client_id"])
		assert.Equal(t, "a@b.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"user":          map[string]any{"id": "user_1", "email": "a@b.com"},
			"access_token":  "at_1",
			"refresh_token": "rt_1",
		})
	})

	authed, err := c.AuthenticateWithPassword(context.Background(), "a@b.com", "Abcd1234!")
	require.NoError(t, err)
	assert.Equal(t, "user_1", authed.User.ID)
	assert.Equal(t, "at_1", authed.AccessToken)
	assert.Equal(t, "rt_1", authed.RefreshToken)
}

func TestAuthenticateWithCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "authorization_code", body["grant_type"])
		assert.Equal(t, "code_xyz", body["code"])

		json.NewEncoder(w).Encode(map[string]any{
			"user":         map[string]any{"id": "user_2", "email": "b@c.com"},
			"access_token": "at_2",
		})
	})

	authed, err := c.AuthenticateWithCode(context.Background(), "code_xyz")
	require.NoError(t, err)
	assert.Equal(t, "user_2", authed.User.ID)
}

func TestUpstreamErrorsAreGeneric(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"user_already_exists","detail":"secret detail"}`, http.StatusUnprocessableEntity)
	})

	_, err := c.CreateUser(context.Background(), "a@b.com", "pw", true)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.UpstreamFailure, appErr.Code)
	// Provider detail is logged, never surfaced.
	assert.NotContains(t, appErr.Message, "secret detail")
}

func TestGetAuthorizationURL(t *testing.T) {
	c := NewClient(Config{
		BaseURL:  "https://api.idp.example",
		APIKey:   "sk",
		ClientID: "client_abc",
	})

	got, err := c.GetAuthorizationURL(domain.AuthorizationURLOptions{
		RedirectURI:    "https://app.example/api/auth/callback",
		OrganizationID: "org_42",
		Provider:       "authkit",
		State:          "st",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "https://api.idp.example/user_management/authorize?"))
	assert.Contains(t, got, "organization_id=org_42")
	assert.Contains(t, got, "client_id=client_abc")
	assert.Contains(t, got, "response_type=code")
}

func TestGetOrganizationDecodesDomains(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/org_42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "org_42",
			"name": "Acme",
			"domains": []map[string]any{
				{"domain": "acme.com", "state": "verified"},
				{"domain": "acme.dev", "state": "pending"},
			},
		})
	})

	org, err := c.GetOrganization(context.Background(), "org_42")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	require.Len(t, org.Domains, 2)
	assert.True(t, org.RequiresStepUp())
}

func TestListMembershipsByUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user_1", r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "om_1", "user_id": "user_1", "organization_id": "org_a", "role": map[string]any{"slug": "admin"}},
				{"id": "om_2", "user_id": "user_1", "organization_id": "org_b", "role": map[string]any{"slug": "member"}},
			},
		})
	})

	memberships, err := c.ListMembershipsByUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, memberships, 2)
	assert.Equal(t, "admin", memberships[0].Role)
	assert.Equal(t, "org_b", memberships[1].OrganizationID)
}

func TestGetWidgetToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/widgets/token", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"token": "wt_1"})
	})

	token, err := c.GetWidgetToken(context.Background(), "user_1", "org_a", []string{"widgets:users-table:manage"})
	require.NoError(t, err)
	assert.Equal(t, "wt_1", token)
}
