// Package config provides application configuration from command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Spotify SpotifyConfig
	Catalog CatalogConfig
	Cache   CacheConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SpotifyConfig holds default Spotify credentials. Both values may be empty;
// the API accepts per-request credentials, and with neither present the
// service degrades to iTunes-only search.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// CatalogConfig holds settings shared by both catalog clients.
type CatalogConfig struct {
	// Timeout bounds every outbound catalog and image request.
	Timeout time.Duration
	// ResultLimit is the per-query match limit requested from each catalog.
	ResultLimit int
	// ProbeDimensions enables HTTP Range probing of iTunes artwork sizes.
	// Off by default: it adds one request per candidate to a sequential batch.
	ProbeDimensions bool
}

// CacheConfig holds memoization settings.
type CacheConfig struct {
	// TTL for cached catalog responses and images. Zero means entries live
	// for the process lifetime.
	TTL time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	catalogTimeout := flag.String("catalog-timeout", "", "Outbound catalog request timeout (default: 10s)")
	resultLimit := flag.String("result-limit", "", "Per-query catalog result limit (default: 5)")
	probeDimensions := flag.String("probe-dimensions", "", "Probe iTunes artwork dimensions (default: false)")
	cacheTTL := flag.String("cache-ttl", "", "Cached response TTL, 0 for process lifetime (default: 0)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env if present; real environment variables win over file values.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Spotify: SpotifyConfig{
			ClientID:     getConfigValue("", "SPOTIFY_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "SPOTIFY_CLIENT_SECRET", ""),
		},
		Catalog: CatalogConfig{
			ResultLimit:     getIntConfigValue(*resultLimit, "CATALOG_RESULT_LIMIT", 5),
			ProbeDimensions: getBoolConfigValue(*probeDimensions, "CATALOG_PROBE_DIMENSIONS", false),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Catalog.Timeout, err = getDurationConfigValue(*catalogTimeout, "CATALOG_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = getDurationConfigValue(*cacheTTL, "CACHE_TTL", "0s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Catalog.ResultLimit < 1 || c.Catalog.ResultLimit > 50 {
		return fmt.Errorf("invalid result limit: %d (must be between 1 and 50)", c.Catalog.ResultLimit)
	}

	if c.Catalog.Timeout <= 0 {
		return errors.New("catalog timeout must be positive")
	}

	if c.Cache.TTL < 0 {
		return errors.New("cache TTL must not be negative")
	}

	// Spotify credentials are optional: without them search degrades to
	// iTunes-only and the API surfaces a warning per entry.

	return nil
}

// SpotifyConfigured reports whether default Spotify credentials are present.
func (c *Config) SpotifyConfigured() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue returns a parsed duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q for %s: %w", strValue, envKey, err)
	}
	return d, nil
}
