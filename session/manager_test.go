package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestManagerCreateSetsCookieAttributes(t *testing.T) {
	m := NewManager(testPassword, 7*24*time.Hour, true)
	c, rec := newTestContext(t, nil)

	require.NoError(t, m.Create(c, testRecord()))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestManagerCreateInsecureOutsideProduction(t *testing.T) {
	m := NewManager(testPassword, time.Hour, false)
	c, rec := newTestContext(t, nil)

	require.NoError(t, m.Create(c, testRecord()))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.False(t, rec.Result().Cookies()[0].Secure)
}

func TestManagerGetRoundTrip(t *testing.T) {
	m := NewManager(testPassword, time.Hour, false)
	c, rec := newTestContext(t, nil)
	require.NoError(t, m.Create(c, testRecord()))

	readCtx, _ := newTestContext(t, rec.Result().Cookies()[0])
	got := m.Get(readCtx)
	require.NotNil(t, got)
	assert.Equal(t, testRecord(), got)
}

func TestManagerGetReturnsNilOnFailure(t *testing.T) {
	m := NewManager(testPassword, time.Hour, false)

	// Absent cookie.
	c, _ := newTestContext(t, nil)
	assert.Nil(t, m.Get(c))

	// Garbage cookie.
	c, _ = newTestContext(t, &http.Cookie{Name: CookieName, Value: "v1.garbage"})
	assert.Nil(t, m.Get(c))

	// Empty value.
	c, _ = newTestContext(t, &http.Cookie{Name: CookieName, Value: ""})
	assert.Nil(t, m.Get(c))
}

func TestManagerDeleteIsIdempotent(t *testing.T) {
	m := NewManager(testPassword, time.Hour, false)
	c, rec := newTestContext(t, nil)

	m.Delete(c)
	m.Delete(c)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	for _, cookie := range cookies {
		assert.Equal(t, CookieName, cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}
