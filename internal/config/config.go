package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. It is public, so
// Validate refuses it while auth is enabled.
const DefaultJWTSecret = "tontine-admin-dev-secret-change-me"

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string
	Timezone string // IANA name used for "today" on the dashboards

	// Data collaborator
	DataAPIURL   string // empty → in-memory mock store
	SeedDemoData bool   // seed the in-memory store with demo members

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	SnapshotCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Admin auth
	AdminUsername     string
	AdminPassword     string // dev only; hashed at startup
	AdminPasswordHash string // bcrypt hash, preferred over AdminPassword
	JWTSecret         string
	JWTAccessTTL      time.Duration
	AuthDisabled      bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "Africa/Kinshasa"),

		DataAPIURL:   strings.TrimRight(getEnv("DATA_API_URL", ""), "/"),
		SeedDemoData: getEnvBool("SEED_DEMO_DATA", true),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 20),

		SnapshotCacheTTL: getEnvDuration("SNAPSHOT_CACHE_TTL", 15*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 8*time.Hour),
		AuthDisabled:      getEnvBool("AUTH_DISABLED", false),
	}
}

// Validate reports settings the admin API cannot safely start with.
func (c *Config) Validate() error {
	if c.AuthDisabled {
		return nil
	}
	if c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set unless AUTH_DISABLED=true")
	}
	if c.AdminPasswordHash == "" && c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be set unless AUTH_DISABLED=true")
	}
	return nil
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
