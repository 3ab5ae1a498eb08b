package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server (presentation surface)
	Port     int
	LogLevel string

	// Backend
	BackendURL string
	UserID     string

	// HTTP client
	HTTPTimeout time.Duration

	// Upgrade timing
	ProbeTimeout   time.Duration // reachability probe bound
	UpgradeTimeout time.Duration // overall upgrade bound
	DailyTimeout   time.Duration // daily payload step bound

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Derived metrics
	ImpulseMerchants []string
	SeedRandSource   int64

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendURL: getEnv("BACKEND_URL", "http://localhost:8090"),
		UserID:     getEnv("USER_ID", "local-user"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		ProbeTimeout:   getEnvDuration("PROBE_TIMEOUT", 3*time.Second),
		UpgradeTimeout: getEnvDuration("UPGRADE_TIMEOUT", 12*time.Second),
		DailyTimeout:   getEnvDuration("DAILY_TIMEOUT", 5*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),

		ImpulseMerchants: getEnvList("IMPULSE_MERCHANTS", nil),
		SeedRandSource:   int64(getEnvInt("SEED_RAND_SOURCE", 0)),

		CacheTTL: getEnvDuration("CACHE_TTL", 24*time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
