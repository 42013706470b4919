package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atriumhq/atrium/domain"
	apperrors "github.com/atriumhq/atrium/errors"
	"github.com/atriumhq/atrium/session"
)

// SessionReader resolves the sealed session cookie of a request.
type SessionReader interface {
	Get(c echo.Context) *domain.SessionRecord
}

var _ SessionReader = (*session.Manager)(nil)

// publicPaths are served without a session. Everything else is gated.
var publicPaths = map[string]bool{
	"/":            true,
	"/healthz":     true,
	"/metrics":     true,
	"/sign-in":     true,
	"/sign-up":     true,
	"/favicon.ico": true,
}

// publicPrefixes cover route families that must stay reachable while logged
// out: the auth API (sign-in, sign-up, callback, password reset) and the
// password reset pages with their token path segment.
var publicPrefixes = []string{
	"/api/auth/",
	"/password-reset",
	"/static/",
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Gate is the single request gate: it resolves the session once per request
// and either admits the request with the record in context or turns it away.
// Browser routes get a redirect to the sign-in page carrying the original
// path; API routes get a 401 JSON body.
func Gate(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			record := sessions.Get(c)
			if record != nil {
				c.Set(domain.SessionContextKey, record)
				ctx := domain.ContextWithSession(c.Request().Context(), record)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			path := c.Request().URL.Path
			if isPublic(path) {
				return next(c)
			}

			if strings.HasPrefix(path, "/api/") {
				appErr := apperrors.NewInvalidSession()
				return c.JSON(appErr.HTTPStatus(), appErr)
			}

			target := "/sign-in?from=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusFound, target)
		}
	}
}

// CurrentSession extracts the record the gate stored on the echo context.
// Handlers behind the gate may assume it is present; the second return is
// for the few handlers mounted on both sides.
func CurrentSession(c echo.Context) (*domain.SessionRecord, bool) {
	record, ok := c.Get(domain.SessionContextKey).(*domain.SessionRecord)
	return record, ok && record != nil
}
