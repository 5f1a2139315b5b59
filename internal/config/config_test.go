package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Catalog: CatalogConfig{
			Timeout:     10 * time.Second,
			ResultLimit: 5,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Environment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "testing"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")

	cfg.App.Environment = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestValidate_ResultLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.ResultLimit = 0
	assert.Error(t, cfg.Validate())

	cfg.Catalog.ResultLimit = 51
	assert.Error(t, cfg.Validate())

	cfg.Catalog.ResultLimit = 50
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CatalogTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Timeout = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_CacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTL = -time.Second
	assert.Error(t, cfg.Validate())

	cfg.Cache.TTL = 0
	assert.NoError(t, cfg.Validate())
}

func TestSpotifyConfigured(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.SpotifyConfigured())

	cfg.Spotify.ClientID = "id"
	assert.False(t, cfg.SpotifyConfigured())

	cfg.Spotify.ClientSecret = "secret"
	assert.True(t, cfg.SpotifyConfigured())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("COVERDASH_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "COVERDASH_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "COVERDASH_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "COVERDASH_TEST_MISSING", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("COVERDASH_TEST_BOOL", "yes")
	assert.True(t, getBoolConfigValue("", "COVERDASH_TEST_BOOL", false))

	t.Setenv("COVERDASH_TEST_BOOL", "no")
	assert.False(t, getBoolConfigValue("", "COVERDASH_TEST_BOOL", true))

	assert.True(t, getBoolConfigValue("", "COVERDASH_TEST_BOOL_MISSING", true))
}

func TestGetDurationConfigValue(t *testing.T) {
	d, err := getDurationConfigValue("", "COVERDASH_TEST_DUR_MISSING", "10s")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	t.Setenv("COVERDASH_TEST_DUR", "nonsense")
	_, err = getDurationConfigValue("", "COVERDASH_TEST_DUR", "10s")
	assert.Error(t, err)
}
