// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config carries everything the binaries need to wire up.
type Config struct {
	Port string

	GCPProject string
	BQDataset  string
	GCSBucket  string

	GeminiModel string

	SyncLookbackDays int
}

// Load reads the .env file when present and resolves the configuration from
// the environment.
func Load(log zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		GCPProject:       getEnv("GCP_PROJECT", ""),
		BQDataset:        getEnv("BQ_DATASET", "homeledger"),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		SyncLookbackDays: getEnvInt("SYNC_LOOKBACK_DAYS", 30),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
