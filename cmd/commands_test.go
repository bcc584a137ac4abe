// file: cmd/commands_test.go
// version: 2.0.0
// guid: 6f5b7d78-11d8-4c1a-a150-96d2c4a1a885

package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/movie-recommender/internal/config"
	"github.com/jdfalk/movie-recommender/internal/poster"
	"github.com/jdfalk/movie-recommender/internal/postercache"
	"github.com/jdfalk/movie-recommender/internal/service"
	"github.com/jdfalk/movie-recommender/internal/testutil"
)

type cliEnv struct {
	dir       string
	cachePath string
	baseArgs  []string
}

// newCLIEnv isolates HOME and the TMDB environment and writes the fixture
// catalog.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("MOVIE_RECOMMENDER_TMDB_API_KEY", "")
	t.Setenv("MOVIE_RECOMMENDER_TMDB_BASE_URL", "")
	t.Setenv("MOVIE_RECOMMENDER_POSTER_MIN_INTERVAL", "1ms")
	t.Setenv("MOVIE_RECOMMENDER_POSTER_RETRY_DELAY", "1ms")

	moviesPath, simPath := testutil.WriteCatalogFiles(t, dir)
	cachePath := filepath.Join(dir, "poster_cache.json")
	return &cliEnv{
		dir:       dir,
		cachePath: cachePath,
		baseArgs: []string{
			"--movies", moviesPath,
			"--similarity", simPath,
			"--cache", cachePath,
			"--log-level", "error",
		},
	}
}

// withTMDB points the poster resolver at a fake TMDB API.
func (e *cliEnv) withTMDB(t *testing.T) *testutil.TMDBServer {
	t.Helper()
	srv := testutil.MockTMDBServer(t, map[string]string{"Sholay": testutil.TMDBSholayResponse})
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("MOVIE_RECOMMENDER_TMDB_BASE_URL", srv.URL)
	return srv
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfgFile = ""
	// drop values read from a previous test's config file
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader("")))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(append([]string{}, e.baseArgs...), args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRecommendCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "recommend", "sholey", "--posters=false")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Showing results for "Sholay"`)
	assert.Contains(t, out, "Because you liked Sholay:")

	deewaar := strings.Index(out, "Deewaar (1975)")
	andaz := strings.Index(out, "Andaz Apna Apna (1994)")
	require.NotEqual(t, -1, deewaar)
	require.NotEqual(t, -1, andaz)
	assert.Less(t, deewaar, andaz)
	assert.NotContains(t, out, "Gully Boy")
}

func TestRecommendCommandJSON(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "recommend", "Sholay", "--json", "--posters=false")
	require.NoError(t, err, out)

	var result service.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Sholay", result.Match)
	assert.Equal(t, 100, result.Score)
	require.Len(t, result.Items, 5)
	assert.Equal(t, "Deewaar", result.Items[0].Movie.Name)
}

func TestRecommendCommandNotFound(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "recommend", "qwertyuiop", "--posters=false")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecommendCommandRejectsInvalidConfig(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "recommend", "Sholay", "--threshold", "0", "--posters=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestBrowseCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "browse", "action", "--sort", "year", "--posters=false")
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Don (1978)"))
	assert.True(t, strings.HasPrefix(lines[1], "Sholay (1975)"))
	assert.True(t, strings.HasPrefix(lines[2], "Deewaar (1975)"))

	out, err = env.run(t, "browse", "Drama", "--limit", "2", "--posters=false")
	require.NoError(t, err, out)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = env.run(t, "browse", "Horror", "--posters=false")
	assert.ErrorContains(t, err, "unknown genre")

	_, err = env.run(t, "browse", "Action", "--sort", "length", "--posters=false")
	assert.Error(t, err)
}

func TestGenresCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "genres")
	require.NoError(t, err)
	assert.Equal(t, "Action\nComedy\nDrama\nRomance\n", out)
}

func TestPosterCommand(t *testing.T) {
	env := newCLIEnv(t)
	srv := env.withTMDB(t)

	out, err := env.run(t, "poster", "Sholay", "--year", "1975")
	require.NoError(t, err, out)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/sholay.jpg\n", out)

	// second lookup is served from the persisted cache
	srv.SetStatus(http.StatusInternalServerError)
	out, err = env.run(t, "poster", "Sholay", "--year", "1975")
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/sholay.jpg\n", out)
	assert.Equal(t, int32(1), srv.SearchCalls.Load())

	data, err := os.ReadFile(env.cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sholay.jpg")
}

func TestPosterCommandWithoutKeyFallsBack(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "poster", "Sholay")
	require.NoError(t, err)
	assert.Equal(t, poster.Placeholder+"\n", out)
}

func TestPosterCommandDisabled(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "poster", "Sholay", "--posters=false")
	assert.ErrorIs(t, err, errPostersDisabled)
}

func TestWarmCommand(t *testing.T) {
	env := newCLIEnv(t)
	srv := env.withTMDB(t)

	out, err := env.run(t, "warm", "--genre", "Action")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Resolved 1 of 3 posters (3 cache entries)")
	assert.Equal(t, int32(3), srv.SearchCalls.Load())

	out, err = env.run(t, "warm", "--genre", "Action")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Resolved 1 of 3 posters (3 cache entries)")
	assert.Equal(t, int32(3), srv.SearchCalls.Load())

	_, err = env.run(t, "warm", "--genre", "Horror")
	assert.ErrorContains(t, err, "unknown genre")
}

func TestConfigInitAndShow(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.dir, "conf", "movie-recommender.yaml")

	out, err := env.run(t, "config", "init", "--path", path, "--threshold", "80")
	require.NoError(t, err, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threshold: 80")
	assert.NotContains(t, string(data), "api_key")

	_, err = env.run(t, "config", "init", "--path", path)
	assert.ErrorContains(t, err, "already exists")
	_, err = env.run(t, "config", "init", "--path", path, "--force")
	assert.NoError(t, err)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "postercache:")
	assert.Contains(t, out, "# tmdb.api_key: (not set)")
}

func TestConfigFileIsRead(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recommend:\n  count: 2\n"), 0o600))

	out, err := env.run(t, "recommend", "Sholay", "--json", "--posters=false", "--config", path)
	require.NoError(t, err, out)
	var result service.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 2, config.AppConfig.RecommendCount)
}

func TestDiagnosticsCheck(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "diagnostics", "check", "--offline")
	require.NoError(t, err, out)
	assert.Contains(t, out, "10 movies, 4 genres")
	assert.Contains(t, out, "json at "+env.cachePath+", 0 entries")
	assert.Contains(t, out, "TMDB:        skipped")

	srv := env.withTMDB(t)
	out, err = env.run(t, "diagnostics", "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "TMDB:        ok ("+srv.URL)
}

func TestDiagnosticsLookup(t *testing.T) {
	env := newCLIEnv(t)
	store, err := postercache.NewFileStore(env.cachePath)
	require.NoError(t, err)
	require.NoError(t, store.Put("Sholay", "https://image.tmdb.org/t/p/w500/sholay.jpg"))
	require.NoError(t, store.Put("Don", poster.Placeholder))

	out, err := env.run(t, "diagnostics", "lookup", "Sholay")
	require.NoError(t, err)
	assert.Equal(t, "Sholay: https://image.tmdb.org/t/p/w500/sholay.jpg\n", out)

	out, err = env.run(t, "diagnostics", "lookup", "Don")
	require.NoError(t, err)
	assert.Equal(t, "Don: placeholder\n", out)

	out, err = env.run(t, "diagnostics", "lookup", "Lagaan")
	require.NoError(t, err)
	assert.Equal(t, "Lagaan: not cached\n", out)
}

func TestDiagnosticsQuery(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "diagnostics", "query")
	assert.ErrorContains(t, err, "only available for the Pebble")

	pebblePath := filepath.Join(env.dir, "posters.pebble")
	store, err := postercache.NewPebbleStore(pebblePath)
	require.NoError(t, err)
	require.NoError(t, store.Put("Sholay", "https://image.tmdb.org/t/p/w500/sholay.jpg"))
	require.NoError(t, store.Close())

	out, err := env.run(t, "diagnostics", "query", "--cache-type", "pebble", "--cache", pebblePath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Key: poster:Sholay")
	assert.Contains(t, out, "sholay.jpg")
}
