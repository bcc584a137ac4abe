// file: cmd/commands.go
// version: 1.0.0
// guid: 8b1e4f27-c3d5-4a96-8e0f-d27a5b9c61e4

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/server"
	"github.com/jdfalk/movie-recommender/internal/service"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend movies similar to a title",
	Long: `Resolve a title with fuzzy matching (typos and different casing are
fine) and list the most similar movies with their posters.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		query := strings.Join(args, " ")
		result, err := a.svc.Recommend(ctx, query)
		if err != nil {
			var nf *service.NotFoundError
			if errors.As(err, &nf) && len(nf.Suggestions) > 0 {
				fmt.Fprintf(out, "No movie matching %q. Did you mean:\n", query)
				for _, s := range nf.Suggestions {
					fmt.Fprintf(out, "  - %s\n", s)
				}
			}
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, result)
		}

		if !strings.EqualFold(result.Match, query) {
			fmt.Fprintf(out, "Showing results for %q (match score %d)\n", result.Match, result.Score)
		}
		fmt.Fprintf(out, "Because you liked %s:\n", result.Match)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for i, it := range result.Items {
			fmt.Fprintf(tw, "%d.\t%s\t%s\t%.2f\t%s\n", i+1, movieLabel(it.Movie), it.Movie.Genre, it.Score, it.PosterURL)
		}
		return tw.Flush()
	},
}

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse <genre>",
	Short: "List movies of a genre",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		if limit, _ := cmd.Flags().GetInt("limit"); cmd.Flags().Changed("limit") {
			cfg.BrowseLimit = limit
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		genre := args[0]
		if !containsFold(a.svc.Genres(), &genre) {
			return fmt.Errorf("unknown genre %q (available: %s)", args[0], strings.Join(a.svc.Genres(), ", "))
		}

		sortKey, _ := cmd.Flags().GetString("sort")
		items, err := a.svc.Browse(cmd.Context(), genre, sortKey)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, items)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", movieLabel(it.Movie), ratingLabel(it.Movie), it.PosterURL)
		}
		return tw.Flush()
	},
}

// genresCmd represents the genres command
var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the catalog genres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		cfg.PosterEnabled = false
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, g := range a.svc.Genres() {
			fmt.Fprintln(cmd.OutOrStdout(), g)
		}
		return nil
	},
}

// posterCmd represents the poster command
var posterCmd = &cobra.Command{
	Use:   "poster <title>",
	Short: "Resolve the poster URL for a title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requirePosters(); err != nil {
			return err
		}

		var year *int
		if cmd.Flags().Changed("year") {
			y, _ := cmd.Flags().GetInt("year")
			year = &y
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.svc.Poster(cmd.Context(), strings.Join(args, " "), year))
		return nil
	},
}

// warmCmd represents the warm command
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fetch and cache posters for the catalog",
	Long: `Resolve posters for every catalog movie (or one genre) so later
lookups are served from the cache. Already cached titles are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requirePosters(); err != nil {
			return err
		}

		movies := a.catalog.Movies()
		if genre, _ := cmd.Flags().GetString("genre"); genre != "" {
			movies = filterGenre(movies, genre)
			if len(movies) == 0 {
				return fmt.Errorf("unknown genre %q", genre)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		bar := progressbar.NewOptions(len(movies),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Fetching posters"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		found := a.resolver.Warm(ctx, movies, func(models.Movie, string) {
			_ = bar.Add(1)
		})
		_ = bar.Finish()

		fmt.Fprintf(out, "Resolved %d of %d posters (%d cache entries)\n", found, len(movies), a.store.Len())
		return ctx.Err()
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Start the HTTP API serving recommendations, genre listings and posters.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := serverConfig(cmd)

		var warmer server.PosterWarmer
		if a.resolver != nil {
			warmer = a.resolver
		}
		srv := server.NewServer(a.svc, warmer, cfg)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d movies on %s:%d\n", a.catalog.Len(), cfg.Host, cfg.Port)
		return srv.Start(cfg)
	},
}

func init() {
	recommendCmd.Flags().Bool("json", false, "print the result as JSON")

	browseCmd.Flags().String("sort", "name", "sort order: name, year or rating")
	browseCmd.Flags().Int("limit", 10, "maximum number of movies to list")
	browseCmd.Flags().Bool("json", false, "print the result as JSON")

	posterCmd.Flags().Int("year", 0, "release year used to pick between candidates")

	warmCmd.Flags().String("genre", "", "only warm one genre")

	serveCmd.Flags().String("host", "0.0.0.0", "host to bind the web server to")
	serveCmd.Flags().Int("port", 8080, "port to run the web server on")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("write-timeout", 60*time.Second, "write timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Duration("idle-timeout", 60*time.Second, "idle timeout (e.g. 60s, 2m)")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serverConfig(cmd *cobra.Command) server.ServerConfig {
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	idleTimeout, _ := cmd.Flags().GetDuration("idle-timeout")
	return server.ServerConfig{
		Host:            config.AppConfig.ServerHost,
		Port:            config.AppConfig.ServerPort,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		RateLimitPerMin: config.AppConfig.RateLimitPerMin,
		RateLimitBurst:  config.AppConfig.RateLimitBurst,
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func movieLabel(m models.Movie) string {
	if m.Year == nil {
		return m.Name
	}
	return fmt.Sprintf("%s (%d)", m.Name, *m.Year)
}

func ratingLabel(m models.Movie) string {
	if m.Rating == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *m.Rating)
}

// containsFold reports whether genre is listed, ignoring case, and rewrites
// it to the catalog spelling.
func containsFold(genres []string, genre *string) bool {
	for _, g := range genres {
		if strings.EqualFold(g, *genre) {
			*genre = g
			return true
		}
	}
	return false
}

func filterGenre(movies []models.Movie, genre string) []models.Movie {
	var out []models.Movie
	for _, m := range movies {
		if strings.EqualFold(m.Genre, genre) {
			out = append(out, m)
		}
	}
	return out
}
