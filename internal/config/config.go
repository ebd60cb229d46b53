// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultProfile         = "standard"
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds settings shared by the CLI commands. Flags override these.
type Config struct {
	Profile     string
	ProfileFile string
	Artifacts   string // empty means the built-in bundle
	HistoryDB   string // empty disables history
	LogLevel    string
	Server      ServerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     string
}

// Load reads configuration from environment variables, loading .env first if present.
func Load() *Config {
	// A missing .env is fine.
	_ = godotenv.Load()

	shutdown := DefaultShutdownTimeout
	if v := os.Getenv("WELLCHECK_SHUTDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			shutdown = time.Duration(n) * time.Second
		}
	}

	return &Config{
		Profile:     getEnvOrDefault("WELLCHECK_PROFILE", DefaultProfile),
		ProfileFile: os.Getenv("WELLCHECK_PROFILE_FILE"),
		Artifacts:   os.Getenv("WELLCHECK_ARTIFACTS"),
		HistoryDB:   os.Getenv("WELLCHECK_HISTORY_DB"),
		LogLevel:    getEnvOrDefault("WELLCHECK_LOG_LEVEL", DefaultLogLevel),
		Server: ServerConfig{
			Addr:            getEnvOrDefault("WELLCHECK_ADDR", DefaultAddr),
			ShutdownTimeout: shutdown,
			CORSOrigins:     getEnvOrDefault("WELLCHECK_CORS_ORIGINS", "*"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
