package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// MinCookiePasswordLength is the minimum length of the session seal password.
// Shorter passwords are rejected at startup, not silently padded.
const MinCookiePasswordLength = 32

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling and env for environment variable binding.
type ServerConfig struct {
	HTTPPort        string `mapstructure:"HTTP_PORT"`
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDBName     string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogPretty       bool   `mapstructure:"LOG_PRETTY"`
	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Identity provider settings.
	AuthAPIKey      string `mapstructure:"AUTH_API_KEY"`
	AuthClientID    string `mapstructure:"AUTH_CLIENT_ID"`
	AuthRedirectURI string `mapstructure:"AUTH_REDIRECT_URI"`
	AuthAPIBaseURL  string `mapstructure:"AUTH_API_BASE_URL"`

	// Session cookie settings.
	CookiePassword    string `mapstructure:"COOKIE_PASSWORD"`
	SessionTTLSeconds int    `mapstructure:"SESSION_TTL_SECONDS"`

	AppURL      string `mapstructure:"APP_URL"`
	Environment string `mapstructure:"ENVIRONMENT"`
}

// IsProduction reports whether the server runs under a production-like
// environment flag. Controls the Secure attribute on the session cookie.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate enforces the security-critical settings. A missing or weak seal
// password must prevent startup rather than degrade to a default.
func (c *ServerConfig) Validate() error {
	if c.CookiePassword == "" {
		return errors.New("COOKIE_PASSWORD is required: refusing to start without a session seal password")
	}
	if len(c.CookiePassword) < MinCookiePasswordLength {
		return fmt.Errorf("COOKIE_PASSWORD must be at least %d characters", MinCookiePasswordLength)
	}
	if c.AuthAPIKey == "" || c.AuthClientID == "" {
		return errors.New("AUTH_API_KEY and AUTH_CLIENT_ID are required")
	}
	return nil
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/atrium/")
	v.AddConfigPath("$HOME/.atrium")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/atrium_dev")
	v.SetDefault("MONGO_DB_NAME", "atrium_dev")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "atrium-server")
	v.SetDefault("AUTH_API_BASE_URL", "https://api.workos.com")
	v.SetDefault("AUTH_REDIRECT_URI", "http://localhost:3000/api/auth/callback")
	v.SetDefault("SESSION_TTL_SECONDS", 604800) // 7 days
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("ENVIRONMENT", "development")

	if err := v.ReadInConfig(); err != nil {
		// ConfigFileNotFoundError is acceptable, means we use defaults/env vars.
		// Other errors (e.g., permission issues, malformed config) should be returned.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
