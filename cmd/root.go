// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "movie-recommender",
	Short: "Recommend Bollywood movies from a precomputed similarity matrix",
	Long: `Movie Recommender resolves a (possibly misspelled) title against the
catalog, lists the most similar movies, browses genres and decorates results
with TMDB posters that are cached locally.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+config.DefaultFileName+")")
	pf.String("movies", "movies.csv", "path to the movie table (CSV)")
	pf.String("similarity", "similarity.json", "path to the similarity matrix (JSON)")
	pf.Int("threshold", 70, "minimum fuzzy match score (1-100)")
	pf.Bool("posters", true, "look up posters on TMDB")
	pf.String("cache", "poster_cache.json", "path to the poster cache")
	pf.String("cache-type", "json", "poster cache backend: json (default), pebble or sqlite")
	pf.Bool("enable-sqlite3-i-know-the-risks", false, "enable the SQLite3 poster cache (WARNING: cgo and cross-compilation issues)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	viper.BindPFlag("data.movies", pf.Lookup("movies"))
	viper.BindPFlag("data.similarity", pf.Lookup("similarity"))
	viper.BindPFlag("match.threshold", pf.Lookup("threshold"))
	viper.BindPFlag("poster.enabled", pf.Lookup("posters"))
	viper.BindPFlag("postercache.path", pf.Lookup("cache"))
	viper.BindPFlag("postercache.type", pf.Lookup("cache-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", pf.Lookup("enable-sqlite3-i-know-the-risks"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(posterCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func initConfig() {
	// a missing .env is normal; the key may come from the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultFileName, ".yaml"))
	}

	viper.SetEnvPrefix("MOVIE_RECOMMENDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	config.InitConfig()
	logging.Init(logging.Config{
		Level:  config.AppConfig.LogLevel,
		Format: config.AppConfig.LogFormat,
		Output: os.Stderr,
	})

	var notFound viper.ConfigFileNotFoundError
	switch {
	case readErr == nil:
		logging.Debug().Str("path", viper.ConfigFileUsed()).Msg("using config file")
	case !errors.As(readErr, &notFound):
		logging.Warn().Err(readErr).Msg("could not read config file")
	}
}
