package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/domain"
	"github.com/atriumhq/atrium/session"
)

const gateTestPassword = "0123456789abcdef0123456789abcdef"

func gateTestServer(t *testing.T) (*echo.Echo, *session.Manager) {
	t.Helper()
	e := echo.New()
	manager := session.NewManager(gateTestPassword, time.Hour, false)
	e.Use(Gate(manager))

	e.GET("/dashboard/items", func(c echo.Context) error {
		record, ok := CurrentSession(c)
		require.True(t, ok)
		return c.String(http.StatusOK, record.User.Email)
	})
	e.GET("/api/organizations", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/sign-in", func(c echo.Context) error {
		return c.String(http.StatusOK, "sign in page")
	})
	e.GET("/api/auth/callback", func(c echo.Context) error {
		return c.String(http.StatusOK, "callback")
	})
	return e, manager
}

func sealedCookie(t *testing.T, manager *session.Manager, record *domain.SessionRecord) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, manager.Create(c, record))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestGateRedirectsBrowserRequestsWithOriginalPath(t *testing.T) {
	e, _ := gateTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/items", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Equal(t, "/sign-in?from="+url.QueryEscape("/dashboard/items"), location)
}

func TestGateReturns401JSONForAPIRequests(t *testing.T) {
	e, _ := gateTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/organizations", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_session")
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestGateAdmitsSealedSession(t *testing.T) {
	e, manager := gateTestServer(t)
	cookie := sealedCookie(t, manager, &domain.SessionRecord{
		User:        domain.IdentityUser{ID: "user_1", Email: "jane@example.com"},
		AccessToken: "at",
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/items", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@example.com", rec.Body.String())
}

func TestGateRejectsTamperedCookie(t *testing.T) {
	e, manager := gateTestServer(t)
	cookie := sealedCookie(t, manager, &domain.SessionRecord{
		User: domain.IdentityUser{ID: "user_1", Email: "jane@example.com"},
	})
	mid := len(cookie.Value) / 2
	replacement := byte('A')
	if cookie.Value[mid] == 'A' {
		replacement = 'B'
	}
	cookie.Value = cookie.Value[:mid] + string(replacement) + cookie.Value[mid+1:]

	req := httptest.NewRequest(http.MethodGet, "/dashboard/items", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestGatePublicPathsPassThrough(t *testing.T) {
	e, _ := gateTestServer(t)

	for _, path := range []string{"/sign-in", "/api/auth/callback"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGateRedirectPreservesQueryString(t *testing.T) {
	e, _ := gateTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/items?page=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/sign-in?from="+url.QueryEscape("/dashboard/items?page=2"), rec.Header().Get("Location"))
}
