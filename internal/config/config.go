// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Catalog artifacts
	MoviesPath     string
	SimilarityPath string

	MatchThreshold int
	RecommendCount int
	BrowseLimit    int

	TMDBAPIKey          string
	TMDBBaseURL         string
	TMDBTimeout         time.Duration
	TMDBBreakerFailures int
	TMDBBreakerCooldown time.Duration

	PosterEnabled     bool
	PosterMaxRetries  int
	PosterRetryDelay  time.Duration
	PosterMinInterval time.Duration
	PosterLanguage    string
	PosterSize        string
	PosterConfigTTL   time.Duration

	PosterCacheType string // "json" (default), "pebble" or "sqlite"
	PosterCachePath string
	EnableSQLite    bool // Must be true to use SQLite (safety flag)

	ServerHost      string
	ServerPort      int
	RateLimitPerMin int
	RateLimitBurst  int

	LogLevel  string
	LogFormat string
}

var AppConfig Config

// SetDefaults registers every default with viper.
func SetDefaults() {
	viper.SetDefault("data.movies", "movies.csv")
	viper.SetDefault("data.similarity", "similarity.json")

	viper.SetDefault("match.threshold", 70)
	viper.SetDefault("recommend.count", 5)
	viper.SetDefault("browse.limit", 10)

	viper.SetDefault("tmdb.base_url", "")
	viper.SetDefault("tmdb.timeout", 10*time.Second)
	viper.SetDefault("tmdb.breaker_failures", 5)
	viper.SetDefault("tmdb.breaker_cooldown", 30*time.Second)

	viper.SetDefault("poster.enabled", true)
	viper.SetDefault("poster.max_retries", 3)
	viper.SetDefault("poster.retry_delay", 2*time.Second)
	viper.SetDefault("poster.min_interval", 300*time.Millisecond)
	viper.SetDefault("poster.language", "hi")
	viper.SetDefault("poster.size", "w500")
	viper.SetDefault("poster.config_ttl", 24*time.Hour)

	viper.SetDefault("postercache.type", "json")
	viper.SetDefault("postercache.path", "poster_cache.json")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit_per_min", 120)
	viper.SetDefault("server.rate_limit_burst", 20)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	// the key is conventionally provided as TMDB_API_KEY (often via .env)
	_ = viper.BindEnv("tmdb.api_key", "MOVIE_RECOMMENDER_TMDB_API_KEY", "TMDB_API_KEY")
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		MoviesPath:     viper.GetString("data.movies"),
		SimilarityPath: viper.GetString("data.similarity"),

		MatchThreshold: viper.GetInt("match.threshold"),
		RecommendCount: viper.GetInt("recommend.count"),
		BrowseLimit:    viper.GetInt("browse.limit"),

		TMDBAPIKey:          viper.GetString("tmdb.api_key"),
		TMDBBaseURL:         viper.GetString("tmdb.base_url"),
		TMDBTimeout:         viper.GetDuration("tmdb.timeout"),
		TMDBBreakerFailures: viper.GetInt("tmdb.breaker_failures"),
		TMDBBreakerCooldown: viper.GetDuration("tmdb.breaker_cooldown"),

		PosterEnabled:     viper.GetBool("poster.enabled"),
		PosterMaxRetries:  viper.GetInt("poster.max_retries"),
		PosterRetryDelay:  viper.GetDuration("poster.retry_delay"),
		PosterMinInterval: viper.GetDuration("poster.min_interval"),
		PosterLanguage:    viper.GetString("poster.language"),
		PosterSize:        viper.GetString("poster.size"),
		PosterConfigTTL:   viper.GetDuration("poster.config_ttl"),

		PosterCacheType: viper.GetString("postercache.type"),
		PosterCachePath: viper.GetString("postercache.path"),
		EnableSQLite:    viper.GetBool("enable_sqlite3_i_know_the_risks"),

		ServerHost:      viper.GetString("server.host"),
		ServerPort:      viper.GetInt("server.port"),
		RateLimitPerMin: viper.GetInt("server.rate_limit_per_min"),
		RateLimitBurst:  viper.GetInt("server.rate_limit_burst"),

		LogLevel:  viper.GetString("log.level"),
		LogFormat: viper.GetString("log.format"),
	}

	// Normalize poster cache type
	AppConfig.PosterCacheType = strings.ToLower(strings.TrimSpace(AppConfig.PosterCacheType))
	if AppConfig.PosterCacheType == "sqlite3" {
		AppConfig.PosterCacheType = "sqlite"
	}
	if AppConfig.PosterCacheType == "" {
		AppConfig.PosterCacheType = "json"
	}
}

// Default returns the built-in defaults without consulting files or the
// environment.
func Default() Config {
	return Config{
		MoviesPath:          "movies.csv",
		SimilarityPath:      "similarity.json",
		MatchThreshold:      70,
		RecommendCount:      5,
		BrowseLimit:         10,
		TMDBTimeout:         10 * time.Second,
		TMDBBreakerFailures: 5,
		TMDBBreakerCooldown: 30 * time.Second,
		PosterEnabled:       true,
		PosterMaxRetries:    3,
		PosterRetryDelay:    2 * time.Second,
		PosterMinInterval:   300 * time.Millisecond,
		PosterLanguage:      "hi",
		PosterSize:          "w500",
		PosterConfigTTL:     24 * time.Hour,
		PosterCacheType:     "json",
		PosterCachePath:     "poster_cache.json",
		ServerHost:          "0.0.0.0",
		ServerPort:          8080,
		RateLimitPerMin:     120,
		RateLimitBurst:      20,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	switch {
	case c.MatchThreshold < 1 || c.MatchThreshold > 100:
		return fmt.Errorf("match.threshold must be between 1 and 100, got %d", c.MatchThreshold)
	case c.RecommendCount < 1:
		return fmt.Errorf("recommend.count must be positive, got %d", c.RecommendCount)
	case c.BrowseLimit < 1:
		return fmt.Errorf("browse.limit must be positive, got %d", c.BrowseLimit)
	case c.PosterMaxRetries < 1:
		return fmt.Errorf("poster.max_retries must be at least 1, got %d", c.PosterMaxRetries)
	case c.PosterRetryDelay < 0 || c.PosterMinInterval < 0 || c.TMDBTimeout < 0:
		return fmt.Errorf("durations must not be negative")
	}
	switch c.PosterCacheType {
	case "json", "pebble":
	case "sqlite":
		if !c.EnableSQLite {
			return fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file")
		}
	default:
		return fmt.Errorf("unsupported postercache.type: %s (supported: json, pebble, sqlite)", c.PosterCacheType)
	}
	return nil
}
