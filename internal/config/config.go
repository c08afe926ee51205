// Package config loads the server settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    slog.Level

	// ScanInterval is the period of the time-driven automation scan. Zero
	// disables the in-process scheduler.
	ScanInterval time.Duration
	LockTTL      time.Duration
	// RedisAddress selects redislock for the scan lock; empty means
	// Postgres advisory locks.
	RedisAddress  string
	RedisPassword string

	IdempotencyTTL  time.Duration
	DefaultCurrency string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            envString("PORT", "8080"),
		LogLevel:        ParseLevel(os.Getenv("LOG_LEVEL")),
		ScanInterval:    envSeconds("AUTOMATION_SCAN_INTERVAL_SECONDS", 15*time.Minute),
		LockTTL:         envSeconds("AUTOMATION_LOCK_TTL_SECONDS", time.Minute),
		RedisAddress:    os.Getenv("REDIS_ADDRESS"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		IdempotencyTTL:  envSeconds("IDEMPOTENCY_TTL_SECONDS", 24*time.Hour),
		DefaultCurrency: strings.ToUpper(envString("DEFAULT_CURRENCY", "TRY")),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.LockTTL <= 0 {
		return Config{}, fmt.Errorf("AUTOMATION_LOCK_TTL_SECONDS must be positive")
	}
	return cfg, nil
}

// ParseLevel maps debug|info|warn|error to a slog level; anything else is
// info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envSeconds reads an integer-seconds env var and returns a Duration.
// Falls back to defaultVal if the var is unset or invalid. An explicit 0 is
// kept.
func envSeconds(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
