// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/movie-recommender/internal/logging"
)

// DefaultFileName is the config file looked up in $HOME.
const DefaultFileName = ".movie-recommender.yaml"

// ConfigFilePath returns the file viper loaded, or $HOME/.movie-recommender.yaml.
func ConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// ToMap renders c with the same nested keys viper reads. The API key is
// only included when includeSecrets is set.
func (c Config) ToMap(includeSecrets bool) map[string]any {
	tmdb := map[string]any{
		"base_url":         c.TMDBBaseURL,
		"timeout":          c.TMDBTimeout.String(),
		"breaker_failures": c.TMDBBreakerFailures,
		"breaker_cooldown": c.TMDBBreakerCooldown.String(),
	}
	if includeSecrets && c.TMDBAPIKey != "" {
		tmdb["api_key"] = c.TMDBAPIKey
	}

	return map[string]any{
		"data": map[string]any{
			"movies":     c.MoviesPath,
			"similarity": c.SimilarityPath,
		},
		"match":     map[string]any{"threshold": c.MatchThreshold},
		"recommend": map[string]any{"count": c.RecommendCount},
		"browse":    map[string]any{"limit": c.BrowseLimit},
		"tmdb":      tmdb,
		"poster": map[string]any{
			"enabled":      c.PosterEnabled,
			"max_retries":  c.PosterMaxRetries,
			"retry_delay":  c.PosterRetryDelay.String(),
			"min_interval": c.PosterMinInterval.String(),
			"language":     c.PosterLanguage,
			"size":         c.PosterSize,
			"config_ttl":   c.PosterConfigTTL.String(),
		},
		"postercache": map[string]any{
			"type": c.PosterCacheType,
			"path": c.PosterCachePath,
		},
		"enable_sqlite3_i_know_the_risks": c.EnableSQLite,
		"server": map[string]any{
			"host":               c.ServerHost,
			"port":               c.ServerPort,
			"rate_limit_per_min": c.RateLimitPerMin,
			"rate_limit_burst":   c.RateLimitBurst,
		},
		"log": map[string]any{
			"level":  c.LogLevel,
			"format": c.LogFormat,
		},
	}
}

// YAML renders c as a config file body without secrets.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.ToMap(false))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes c to path. Existing files are only replaced when
// overwrite is set.
func SaveConfigToFile(c Config, path string, overwrite bool) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	logging.Info().Str("path", path).Msg("configuration saved")
	return nil
}
