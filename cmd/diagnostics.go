// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/spf13/cobra"

	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/postercache"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging helpers",
		Long:  "Diagnostic utilities for inspecting the catalog, the poster cache and TMDB connectivity.",
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify catalog, poster cache and TMDB access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			offline, _ := cmd.Flags().GetBool("offline")
			return runDiagnosticsCheck(cmd.Context(), cmd.OutOrStdout(), offline)
		},
	}

	lookupCmd = &cobra.Command{
		Use:   "lookup <title>",
		Short: "Show the cached poster for a title without fetching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheLookup(cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Dump raw poster cache entries (Pebble only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			return runRawPebbleQuery(cmd.OutOrStdout(), limit, prefix)
		},
	}
)

func init() {
	checkCmd.Flags().Bool("offline", false, "skip the TMDB connectivity probe")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "poster:", "Key prefix to inspect")

	diagnosticsCmd.AddCommand(checkCmd)
	diagnosticsCmd.AddCommand(lookupCmd)
	diagnosticsCmd.AddCommand(queryCmd)
}

func runDiagnosticsCheck(ctx context.Context, out io.Writer, offline bool) error {
	cfg := config.AppConfig
	fmt.Fprintf(out, "Config file: %s\n", config.ConfigFilePath())

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(out, "Catalog:     FAILED (%v)\n", err)
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "Catalog:     %d movies, %d genres (%s)\n", a.catalog.Len(), len(a.svc.Genres()), cfg.MoviesPath)
	if a.resolver == nil {
		fmt.Fprintln(out, "Posters:     disabled")
		return nil
	}
	fmt.Fprintf(out, "Cache:       %s at %s, %d entries\n", cfg.PosterCacheType, cfg.PosterCachePath, a.store.Len())

	switch {
	case offline:
		fmt.Fprintln(out, "TMDB:        skipped")
	case !a.client.HasAPIKey():
		fmt.Fprintln(out, "TMDB:        no API key (set TMDB_API_KEY)")
	default:
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		start := time.Now()
		if _, err := a.client.Configuration(ctx); err != nil {
			fmt.Fprintf(out, "TMDB:        FAILED (%v)\n", err)
			return fmt.Errorf("tmdb unreachable: %w", err)
		}
		fmt.Fprintf(out, "TMDB:        ok (%s, %s)\n", a.client.BaseURL(), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func runCacheLookup(out io.Writer, title string) error {
	cfg := config.AppConfig
	store, err := postercache.Open(cfg.PosterCacheType, cfg.PosterCachePath, cfg.EnableSQLite)
	if err != nil {
		return fmt.Errorf("failed to open poster cache: %w", err)
	}
	defer store.Close()

	url, ok := store.Get(title)
	switch {
	case !ok:
		fmt.Fprintf(out, "%s: not cached\n", title)
	case url == poster.Placeholder:
		fmt.Fprintf(out, "%s: placeholder\n", title)
	default:
		fmt.Fprintf(out, "%s: %s\n", title, url)
	}
	return nil
}

func runRawPebbleQuery(out io.Writer, limit int, prefix string) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if config.AppConfig.PosterCacheType != postercache.KindPebble {
		return fmt.Errorf("raw inspection is only available for the Pebble poster cache")
	}

	db, err := pebble.Open(config.AppConfig.PosterCachePath, &pebble.Options{
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		fmt.Fprintf(out, "Key: %s\n", string(iter.Key()))
		fmt.Fprintf(out, "Value: %s\n", truncateString(string(iter.Value()), 500))
		fmt.Fprintln(out, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
