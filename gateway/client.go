// Package gateway implements domain.IdentityProvider over the identity
// provider's user management REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
)

// defaultTimeout bounds every outbound provider call. Flows do not retry
// automatically; retries are user-initiated.
const defaultTimeout = 5 * time.Second

// Config holds settings for the provider client.
type Config struct {
	BaseURL  string
	APIKey   string
	ClientID string
	Timeout  time.Duration
}

// Client is the HTTP implementation of domain.IdentityProvider. Construct it
// once at process start from validated configuration and inject it into
// every flow; it holds no mutable state beyond the http.Client.
type Client struct {
	baseURL  string
	apiKey   string
	clientID string
	http     *http.Client
}

// NewClient creates a provider client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		clientID: cfg.ClientID,
		http:     &http.Client{Timeout: timeout},
	}
}

// do issues a JSON request and decodes a 2xx response into out (when out is
// non-nil). Non-2xx responses are logged with the provider body and mapped
// to the generic upstream failure; callers never see provider error detail.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("path", path).Msg("Identity provider request failed")
		return apperrors.NewUpstreamFailure()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Bytes("body", detail).
			Msg("Identity provider returned an error")
		return apperrors.NewUpstreamFailure()
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to decode identity provider response")
		return apperrors.NewUpstreamFailure()
	}
	return nil
}

// wireUser is the provider's user representation on the wire.
type wireUser struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func (u *wireUser) toDomain() *domain.IdentityUser {
	return &domain.IdentityUser{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

type wireAuthResponse struct {
	User         wireUser `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// CreateUser creates a user at the provider.
func (c *Client) CreateUser(ctx context.Context, email, password string, emailVerified bool) (*domain.IdentityUser, error) {
	var out wireUser
	err := c.do(ctx, http.MethodPost, "/user_management/users", map[string]any{
		"email":          email,
		"password":       password,
		"email_verified": emailVerified,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// GetUser fetches a user by provider id.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.IdentityUser, error) {
	var out wireUser
	if err := c.do(ctx, http.MethodGet, "/user_management/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// UpdateUser patches mutable profile fields. Nil fields are omitted.
func (c *Client) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.IdentityUser, error) {
	body := map[string]any{}
	if update.FirstName != nil {
		body["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		body["last_name"] = *update.LastName
	}
	if update.ProfilePictureURL != nil {
		body["profile_picture_url"] = *update.ProfilePictureURL
	}
	var out wireUser
	if err := c.do(ctx, http.MethodPut, "/user_management/users/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// AuthenticateWithPassword exchanges email+password for a user and tokens.
func (c *Client) AuthenticateWithPassword(ctx context.Context, email, password string) (*domain.AuthenticatedUser, error) {
	var out wireAuthResponse
	err := c.do(ctx, http.MethodPost, "/user_management/authenticate", map[string]any{
		"client_id":  c.clientID,
		"grant_type": "password",
		"email":      email,
		"password":   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.AuthenticatedUser{
		User:         *out.User.toDomain(),
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}, nil
}

// AuthenticateWithCode exchanges an authorization code for a user and tokens.
func (c *Client) AuthenticateWithCode(ctx context.Context, code string) (*domain.AuthenticatedUser, error) {
	var out wireAuthResponse
	err := c.do(ctx, http.MethodPost, "/user_management/authenticate", map[string]any{
		"client_id":  c.clientID,
		"grant_type": "authorization_code",
		"code":       code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.AuthenticatedUser{
		User:         *out.User.toDomain(),
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}, nil
}

// GetAuthorizationURL builds the provider's hosted authorization endpoint
// URL. Pure URL construction; no network call.
func (c *Client) GetAuthorizationURL(opts domain.AuthorizationURLOptions) (string, error) {
	base, err := url.Parse(c.baseURL + "/user_management/authorize")
	if err != nil {
		return "", fmt.Errorf("parse authorization endpoint: %w", err)
	}
	q := base.Query()
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", opts.RedirectURI)
	if opts.Provider != "" {
		q.Set("provider", opts.Provider)
	}
	if opts.OrganizationID != "" {
		q.Set("organization_id", opts.OrganizationID)
	}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// CreatePasswordReset asks the provider to start a password reset for email.
func (c *Client) CreatePasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/user_management/password_reset", map[string]any{
		"email": email,
	}, nil)
}

// ResetPassword completes a password reset. Token validity and expiry are
// entirely the provider's call.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/user_management/password_reset/confirm", map[string]any{
		"token":        token,
		"new_password": newPassword,
	}, nil)
}

var _ domain.IdentityProvider = (*Client)(nil)
