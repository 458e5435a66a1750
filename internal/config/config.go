package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config keeps runtime settings for the service.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	LogLevel    zerolog.Level
}

// Load reads configuration from a .env file (if present) and the
// environment, applying defaults for anything unset.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:    strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    zerolog.InfoLevel,
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskagent.db"
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
