// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkordes/travel-guide/internal/identity"
)

// Config holds all configuration values for the travel guide client.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the shell API listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// DatabaseURL is the Postgres connection string of the profile store.
	// Optional: profiles are kept in memory when it is empty or unreachable.
	DatabaseURL string

	// AuthAPIKey is the identity toolkit API key. Required.
	AuthAPIKey string

	// AuthBaseURL and TokenBaseURL point the identity adapter at the hosted
	// service or an emulator.
	AuthBaseURL  string
	TokenBaseURL string

	// GoogleClientID and GoogleClientSecret configure federated sign-in.
	// Without a client ID, Google sign-in reports the provider as disabled.
	GoogleClientID     string
	GoogleClientSecret string

	// MapsAPIKey authorises directions requests. Required.
	MapsAPIKey string

	// APIBaseURL is the backend serving search, translate and guide
	// generation. Defaults to "http://localhost:5000".
	APIBaseURL string

	// APIRateLimit caps outgoing backend requests per second. Defaults to 5.
	// Zero or less disables pacing.
	APIRateLimit float64

	// ShellRateLimit caps incoming shell API requests per second.
	// Defaults to 20. Zero or less disables it.
	ShellRateLimit float64

	// CredentialsFile is where the refresh credential is kept between runs.
	// Defaults to $HOME/.travelguide/credentials.json.
	CredentialsFile string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// value that does not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AuthBaseURL:        getEnv("AUTH_BASE_URL", identity.DefaultAuthBaseURL),
		TokenBaseURL:       getEnv("TOKEN_BASE_URL", identity.DefaultTokenBaseURL),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:5000"),
		CredentialsFile:    getEnv("CREDENTIALS_FILE", defaultCredentialsFile()),
	}

	var missing, invalid []string

	cfg.AuthAPIKey = os.Getenv("AUTH_API_KEY")
	if cfg.AuthAPIKey == "" {
		missing = append(missing, "AUTH_API_KEY")
	}
	cfg.MapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.MapsAPIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}

	var err error
	if cfg.APIRateLimit, err = getFloat("API_RATE_LIMIT", 5); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.ShellRateLimit, err = getFloat("SHELL_RATE_LIMIT", 20); err != nil {
		invalid = append(invalid, err.Error())
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a number", key, v)
	}
	return f, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".travelguide", "credentials.json")
	}
	return filepath.Join(home, ".travelguide", "credentials.json")
}
