// Package config resolves runtime configuration from environment variables.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/asadrizvi64/agentic-voice/internal/store"
)

// GetStoreConfig returns the session store configuration based on
// environment variables. REG_STORE_TYPE selects the backend; PostgreSQL is
// the default.
func GetStoreConfig() store.Config {
	storeType := os.Getenv("REG_STORE_TYPE")

	cfg := store.Config{}
	switch strings.ToLower(storeType) {
	case "memory", "mem":
		cfg.Type = store.MemoryStore
	case "", "postgres", "postgresql", "db":
		cfg.Type = store.PostgresStore
		cfg.ConnectionString = getConnectionString()
	default:
		cfg.Type = store.PostgresStore
		cfg.ConnectionString = getConnectionString()
	}
	return cfg
}

func getConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STRING"); connStr != "" {
		return connStr
	}
	// Default connection string for local development.
	return "postgres://localhost:5432/postgres?sslmode=disable"
}

// IsMemoryMode reports whether the in-memory store was selected.
func IsMemoryMode() bool {
	t := os.Getenv("REG_STORE_TYPE")
	return strings.EqualFold(t, "memory") || strings.EqualFold(t, "mem")
}

// GetAPIKey looks for GEMINI_API_KEY first, then falls back to
// GOOGLE_API_KEY. An empty result means the text-generation service is not
// configured and deterministic behavior is used everywhere.
func GetAPIKey() string {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		return apiKey
	}
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		log.Println("Using GOOGLE_API_KEY for Gemini API (consider setting GEMINI_API_KEY)")
		return apiKey
	}
	return ""
}

// GetLLMTimeout returns the per-call bound for text-generation requests.
func GetLLMTimeout() time.Duration {
	if raw := os.Getenv("LLM_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
		log.Printf("config: invalid LLM_TIMEOUT %q, using default", raw)
	}
	return 8 * time.Second
}
