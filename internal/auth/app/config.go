package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Issuer claim stamped on and enforced for tokens
	JWTSecret string // Required: shared secret for HS256 signing

	AccessTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 14 days)
	ResetTTL   time.Duration // Password reset token lifetime (default: 15m)
	VerifyTTL  time.Duration // Verification token lifetime (default: 15m)

	DatabaseFile     string // Path to the SQLite database file (default: ./gatehouse.db)
	PepperFile       string // Path to the password pepper file (default: ./pepper)
	TokenStoreDriver string // Token authority backend (sqlite, redis) (default: sqlite)

	RedisAddr     string // Redis address, only used with the redis token store
	RedisUsername string
	RedisPassword string
	RedisDB       int

	BootstrapEmail    string // Optional: admin seeded on an empty database
	BootstrapPassword string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SessionRetention     time.Duration // Device session retention (default: 90 days)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "gatehouse"),
		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", 14*24*time.Hour),
		ResetTTL:   getEnvDurationOrDefault("AUTH_RESET_TTL", 15*time.Minute),
		VerifyTTL:  getEnvDurationOrDefault("AUTH_VERIFY_TTL", 15*time.Minute),

		DatabaseFile:     getEnvOrDefault("AUTH_DATABASE_FILE", "gatehouse.db"),
		PepperFile:       getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		TokenStoreDriver: getEnvOrDefault("AUTH_TOKEN_STORE", "sqlite"),

		RedisAddr:     getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisUsername: os.Getenv("AUTH_REDIS_USERNAME"),
		RedisPassword: os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("AUTH_REDIS_DB", 0),

		BootstrapEmail:    os.Getenv("AUTH_BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("AUTH_BOOTSTRAP_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		SessionRetention:     getEnvDurationOrDefault("SESSION_RETENTION", 90*24*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accepts Go duration syntax (e.g. "1h", "30m", "90s").
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
