package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	api "github.com/atriumhq/atrium/api/echo"
	"github.com/atriumhq/atrium/config"
	"github.com/atriumhq/atrium/log"
	"github.com/atriumhq/atrium/middleware"
	"github.com/atriumhq/atrium/mongodb"
	"github.com/atriumhq/atrium/session"
)

// NewHTTPServer creates and configures the echo HTTP server: recovery,
// request logging, tracing, the session gate, the API routes and the
// operational endpoints.
func NewHTTPServer(
	cfg *config.ServerConfig,
	appLogger log.Logger,
	sessions *session.Manager,
	httpAPI *api.API,
	registry *prometheus.Registry,
) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.OtelServiceName))

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			fields := map[string]any{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
				"ip":         c.RealIP(),
				"user_agent": c.Request().UserAgent(),
			}
			if err != nil {
				appLogger.Error(c.Request().Context(), "HTTP request failed", err, fields)
			} else {
				appLogger.Info(c.Request().Context(), "HTTP request", fields)
			}
			return err
		}
	})

	e.Use(middleware.Gate(sessions))

	httpAPI.RegisterRoutes(e)

	// The mirror database is a degradable dependency: the server stays up
	// (and healthy for load balancers) without it, sessions keep working.
	e.GET("/healthz", func(c echo.Context) error {
		mirror := "ok"
		if err := mongodb.Ping(c.Request().Context()); err != nil {
			mirror = "unavailable"
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "mirror": mirror})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
