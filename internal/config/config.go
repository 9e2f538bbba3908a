package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// BackendURL is the base URL of the collaborative request service.
	BackendURL string
	// LedgerURL is the base URL of the ledger/transfer service.
	LedgerURL string
	// AuthToken is the bearer token attached to every outbound call.
	AuthToken string
	// UserID identifies the local wallet user for CLI sessions.
	UserID string
	// UserEmail is the payment identifier of the local wallet user.
	UserEmail string
	// PollInterval is the default polling cadence for live request updates.
	PollInterval time.Duration

	// Stub server settings.
	Port        string
	DatabaseURL string
	StubDBPath  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8080"),
		LedgerURL:    getEnv("LEDGER_URL", "http://localhost:8080/ledger"),
		AuthToken:    getEnv("API_AUTH_TOKEN", "dev-token"),
		UserID:       getEnv("WALLET_USER_ID", ""),
		UserEmail:    getEnv("WALLET_USER_EMAIL", ""),
		PollInterval: getDurationMs("POLL_INTERVAL_MS", 3000),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		StubDBPath:   getEnv("STUB_DB_PATH", "stub.db"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationMs reads a millisecond count from the environment
func getDurationMs(key string, defaultMs int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(defaultMs) * time.Millisecond
}
