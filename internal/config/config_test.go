// file: internal/config/config_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitConfig tests configuration initialization with defaults
func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TMDB_API_KEY", "")

	InitConfig()

	assert.Equal(t, Default(), AppConfig)
	assert.NoError(t, AppConfig.Validate())
}

func TestInitConfigReadsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TMDB_API_KEY", "from-dotenv")

	viper.Set("match.threshold", 85)
	viper.Set("poster.retry_delay", "500ms")
	viper.Set("postercache.type", "SQLite3")
	viper.Set("enable_sqlite3_i_know_the_risks", true)

	InitConfig()

	assert.Equal(t, 85, AppConfig.MatchThreshold)
	assert.Equal(t, 500*time.Millisecond, AppConfig.PosterRetryDelay)
	assert.Equal(t, "sqlite", AppConfig.PosterCacheType)
	assert.Equal(t, "from-dotenv", AppConfig.TMDBAPIKey)
	assert.NoError(t, AppConfig.Validate())
}

func TestInitConfigPrefixedKeyWins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TMDB_API_KEY", "plain")
	t.Setenv("MOVIE_RECOMMENDER_TMDB_API_KEY", "prefixed")

	InitConfig()
	assert.Equal(t, "prefixed", AppConfig.TMDBAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"threshold zero", func(c *Config) { c.MatchThreshold = 0 }, "match.threshold"},
		{"threshold too high", func(c *Config) { c.MatchThreshold = 101 }, "match.threshold"},
		{"count", func(c *Config) { c.RecommendCount = 0 }, "recommend.count"},
		{"browse limit", func(c *Config) { c.BrowseLimit = -1 }, "browse.limit"},
		{"retries", func(c *Config) { c.PosterMaxRetries = 0 }, "poster.max_retries"},
		{"negative delay", func(c *Config) { c.PosterRetryDelay = -time.Second }, "negative"},
		{"sqlite not enabled", func(c *Config) { c.PosterCacheType = "sqlite" }, "not enabled"},
		{"unknown cache", func(c *Config) { c.PosterCacheType = "redis" }, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.errMsg)
		})
	}

	c := Default()
	c.PosterCacheType = "pebble"
	assert.NoError(t, c.Validate())
}

func TestSaveConfigToFileRoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "cfg", "movie-recommender.yaml")
	c := Default()
	c.MatchThreshold = 80
	c.PosterMinInterval = time.Second
	c.TMDBAPIKey = "secret"

	require.NoError(t, SaveConfigToFile(c, path, false))
	assert.ErrorContains(t, SaveConfigToFile(c, path, false), "already exists")
	require.NoError(t, SaveConfigToFile(c, path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "secret"), "api key must not be written")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	t.Setenv("TMDB_API_KEY", "")
	InitConfig()
	assert.Equal(t, 80, AppConfig.MatchThreshold)
	assert.Equal(t, time.Second, AppConfig.PosterMinInterval)
	assert.Equal(t, path, ConfigFilePath())
}

func TestToMapSecrets(t *testing.T) {
	c := Default()
	c.TMDBAPIKey = "k"
	tmdb := c.ToMap(true)["tmdb"].(map[string]any)
	assert.Equal(t, "k", tmdb["api_key"])
	tmdb = c.ToMap(false)["tmdb"].(map[string]any)
	assert.NotContains(t, tmdb, "api_key")
}
