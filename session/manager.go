package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atriumhq/atrium/domain"
)

// CookieName is the session cookie name.
const CookieName = "session"

// Manager owns request-scoped read/write of the sealed session cookie. No
// other component may touch the cookie directly.
//
// The cookie is the only shared mutable state crossing request boundaries
// and it is owned by the browser: two concurrent writes from the same
// browser race and the last Set-Cookie wins. That is a known, accepted race
// (single-writer per browser in practice); the server never caches session
// state in process memory.
type Manager struct {
	password string
	ttl      time.Duration
	secure   bool
}

// NewManager creates a session Manager. secure controls the cookie's Secure
// attribute and should be true under a production-like environment.
func NewManager(password string, ttl time.Duration, secure bool) *Manager {
	return &Manager{password: password, ttl: ttl, secure: secure}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Get reads and unseals the session cookie. It returns nil for every failure
// mode: absent cookie, bad seal, expiry. It never returns an error; an
// unreadable session is simply "not logged in".
func (m *Manager) Get(c echo.Context) *domain.SessionRecord {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	record, err := Unseal(cookie.Value, m.password, m.ttl)
	if err != nil {
		return nil
	}
	return record
}

// Create seals the record and sets the session cookie.
func (m *Manager) Create(c echo.Context, record *domain.SessionRecord) error {
	token, err := Seal(record, m.password, m.ttl)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Delete clears the session cookie. Idempotent: deleting an absent session
// is not an error.
func (m *Manager) Delete(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
