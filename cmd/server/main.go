package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	api "github.com/atriumhq/atrium/api/echo"
	"github.com/atriumhq/atrium/cache"
	redicache "github.com/atriumhq/atrium/cache/redis"
	"github.com/atriumhq/atrium/config"
	"github.com/atriumhq/atrium/domain"
	"github.com/atriumhq/atrium/gateway"
	"github.com/atriumhq/atrium/internal/metrics"
	"github.com/atriumhq/atrium/internal/server"
	"github.com/atriumhq/atrium/log"
	"github.com/atriumhq/atrium/mongodb"
	"github.com/atriumhq/atrium/services"
	"github.com/atriumhq/atrium/session"
	"github.com/atriumhq/atrium/tracing"
)

var (
	appLogger      log.Logger
	httpServer     *http.Server
	tracerProvider *sdktrace.TracerProvider
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Warn().
			Str("configured_log_level", cfg.LogLevel).
			Str("fallback_log_level", logLevel.String()).
			Err(parseErr).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)
	ctx := context.Background()

	appLogger.Info(ctx, "Starting atrium server...")
	appLogger.Info(ctx, "Configuration loaded", map[string]any{
		"http_port":     cfg.HTTPPort,
		"mongo_db_name": cfg.MongoDBName,
		"log_level":     cfg.LogLevel,
		"otel_service":  cfg.OtelServiceName,
		"environment":   cfg.Environment,
	})

	// The seal password and provider credentials are non-negotiable.
	if err := cfg.Validate(); err != nil {
		appLogger.Fatal(ctx, "Invalid configuration", err, nil)
	}

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err, nil)
	}
	tracerProvider = tp

	// Mirror database. The server starts without it; sync calls degrade to
	// logged skips and the provider stays the source of truth.
	var userRepo domain.UserMirrorRepository
	var orgRepo domain.OrganizationMirrorRepository
	if initErr := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); initErr != nil {
		appLogger.Error(ctx, "Mirror database unavailable, starting degraded", initErr, nil)
	} else {
		db := mongodb.GetDB()
		userRepo, err = mongodb.NewUserMirrorRepository(ctx, db)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to initialize UserMirrorRepository", err, nil)
		}
		orgRepo, err = mongodb.NewOrganizationMirrorRepository(ctx, db)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to initialize OrganizationMirrorRepository", err, nil)
		}
	}

	// Membership cache. Optional: without Redis every organization read hits
	// the provider directly.
	var membershipStore cache.MembershipStore = cache.NoopMembershipStore{}
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			appLogger.Error(ctx, "Redis unavailable, membership caching disabled", pingErr, nil)
		} else {
			membershipStore = redicache.NewMembershipStore(redisClient, "atrium")
			appLogger.Info(ctx, "Membership caching enabled", map[string]any{"redis_addr": cfg.RedisAddr})
		}
	}

	provider := gateway.NewClient(gateway.Config{
		BaseURL:  cfg.AuthAPIBaseURL,
		APIKey:   cfg.AuthAPIKey,
		ClientID: cfg.AuthClientID,
	})

	sessions := session.NewManager(
		cfg.CookiePassword,
		time.Duration(cfg.SessionTTLSeconds)*time.Second,
		cfg.IsProduction(),
	)

	syncService := services.NewSyncService(userRepo, orgRepo)
	authService := services.NewAuthService(provider, syncService)
	orgService := services.NewOrganizationService(provider, membershipStore, syncService, cfg.AuthRedirectURI)
	widgetService := services.NewWidgetTokenService(provider)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.InitCustomMetrics(registry)

	httpAPI := api.NewAPI(sessions, authService, orgService, widgetService, cfg.AppURL)
	httpServer = server.NewHTTPServer(cfg, appLogger, sessions, httpAPI, registry)

	go func() {
		appLogger.Info(context.Background(), fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(context.Background(), "Failed to start HTTP server", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(ctx, fmt.Sprintf("Received signal: %v. Shutting down server...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "HTTP server shutdown error", err, nil)
		}
	}

	widgetService.Stop()

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err, nil)
		}
	}

	mongodb.CloseMongoDB(shutdownCtx)

	appLogger.Info(shutdownCtx, "Server gracefully stopped.")
}
