// Package config loads process settings from the environment and an
// optional .env file. The listen port is fixed and intentionally absent.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds ambient settings for the server process.
type Config struct {
	// LogLevel is a zap level name such as "debug" or "warn".
	LogLevel string
	// ProjectID enables Cloud Trace correlation in request logs when set.
	ProjectID string
	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
}

// Load reads files (default ".env") into the environment without
// overriding variables that are already set, then builds a Config.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		LogLevel:        firstNonEmpty(os.Getenv("LOG_LEVEL"), defaultLogLevel),
		ProjectID:       projectID(),
		ShutdownTimeout: defaultShutdownTimeout,
	}
	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", d)
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}

func projectID() string {
	return firstNonEmpty(
		os.Getenv("FIREBASE_PROJECT_ID"),
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		os.Getenv("GCP_PROJECT"),
		os.Getenv("GCLOUD_PROJECT"),
		os.Getenv("PROJECT_ID"),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
