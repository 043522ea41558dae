// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend names accepted by CACHE_BACKEND and REMOTE_BACKEND.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Photos travel base64-encoded, so the
	// default is 10 MiB.
	MaxBodyBytes int64

	// CacheBackend selects the local cache: "postgres" (default) or "memory".
	CacheBackend string
	// DatabaseURL is the Postgres connection string. Required for the
	// postgres cache.
	DatabaseURL string

	// RemoteBackend selects the document store: "firestore" (default) or
	// "memory".
	RemoteBackend string
	// GCPProject and StorageBucket are required for the firestore backend.
	GCPProject    string
	StorageBucket string

	// JWTSecret verifies bearer tokens (HS256). Required.
	JWTSecret string

	TravelAPIURL  string
	WeatherAPIURL string
	// WeatherAPIKey is optional; without it weather refreshes report the
	// service as unavailable.
	WeatherAPIKey string

	// StepStatePath is the TOML file holding step-counter baselines.
	StepStatePath string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is not set, plus any
// malformed values.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", BackendPostgres)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RemoteBackend: strings.ToLower(getEnv("REMOTE_BACKEND", BackendFirestore)),
		GCPProject:    os.Getenv("GCP_PROJECT"),
		StorageBucket: os.Getenv("STORAGE_BUCKET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TravelAPIURL:  getEnv("TRAVEL_API_URL", "https://bogX2.pythonanywhere.com"),
		WeatherAPIURL: getEnv("WEATHER_API_URL", "https://api.openweathermap.org"),
		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),
		StepStatePath: getEnv("STEP_STATE_PATH", "steps.toml"),
	}

	var missing, invalid []string

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "10485760"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES must be a positive integer")
	}
	cfg.MaxBodyBytes = maxBody

	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch cfg.CacheBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendMemory:
	default:
		invalid = append(invalid, fmt.Sprintf("CACHE_BACKEND %q (want postgres or memory)", cfg.CacheBackend))
	}

	switch cfg.RemoteBackend {
	case BackendFirestore:
		if cfg.GCPProject == "" {
			missing = append(missing, "GCP_PROJECT")
		}
		if cfg.StorageBucket == "" {
			missing = append(missing, "STORAGE_BUCKET")
		}
	case BackendMemory:
	default:
		invalid = append(invalid, fmt.Sprintf("REMOTE_BACKEND %q (want firestore or memory)", cfg.RemoteBackend))
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid values: "+strings.Join(invalid, "; "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("%s", strings.Join(problems, "; "))
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
