package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the LocalPros webapp.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Session   SessionConfig
	Routes    RoutesConfig
	Telemetry TelemetryConfig

	// SeedDemo seeds demo profiles and listings into an in-memory store.
	// Local development only.
	SeedDemo bool
}

type DatabaseConfig struct {
	// URL of the PostgreSQL profile/directory store. Empty selects the
	// in-memory store.
	URL string
}

type SessionConfig struct {
	// Secret signs the session cookie. Required in production; a dev
	// default is generated when unset.
	Secret string
	// TTL is the session lifetime. The cookie is re-issued once it has
	// passed half of it.
	TTL time.Duration
	// SecureCookies controls the cookie Secure flag.
	SecureCookies bool
}

type RoutesConfig struct {
	// File is an optional YAML route table overriding the built-in
	// /admin + /provider rules.
	File string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("LOCALPROS_PORT", 8080),
		Version: envStr("LOCALPROS_VERSION", "0.2.0"),
		Database: DatabaseConfig{
			URL: envStr("LOCALPROS_DATABASE_URL", ""),
		},
		Session: SessionConfig{
			Secret:        envStr("LOCALPROS_SESSION_SECRET", ""),
			TTL:           envDur("LOCALPROS_SESSION_TTL", 12*time.Hour),
			SecureCookies: envBool("LOCALPROS_SECURE_COOKIES", true),
		},
		Routes: RoutesConfig{
			File: envStr("LOCALPROS_ROUTES_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", true),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "localpros-webapp"),
		},
		SeedDemo: envBool("LOCALPROS_SEED_DEMO", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
