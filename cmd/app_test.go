package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glefebvre/moviesearch/internal/config"
	testhelpers "github.com/glefebvre/moviesearch/internal/testing"
)

func testConfig(fake *testhelpers.FakeOMDb, dbPath string) *config.Config {
	return &config.Config{
		OMDB: config.OMDBConfig{
			BaseURL:        fake.URL() + "/",
			APIKey:         testhelpers.TestAPIKey,
			TimeoutSeconds: 5,
			RetryAttempts:  1,
		},
		Storage: config.StorageConfig{Driver: "sqlite", Path: dbPath},
		Images:  config.ImagesConfig{FallbackURL: config.DefaultFallbackURL, ShowEmoji: true},
		State:   config.StateConfig{MaxErrors: 10, MinQueryLength: 3},
	}
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestNewApp(t *testing.T) {
	fake := testhelpers.NewFakeOMDb(t)
	cfg := testConfig(fake, t.TempDir()+"/moviesearch.db")

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.store.Ready())
	assert.Empty(t, a.store.FavouriteMovies())
	assert.NoError(t, a.blobs.Ping(context.Background()))
}

func TestSearchCommand(t *testing.T) {
	fake := testhelpers.NewFakeOMDb(t)
	config.Set(testConfig(fake, t.TempDir()+"/moviesearch.db"))

	out, err := runCommand(t, searchCmd, "rambo")

	require.NoError(t, err)
	assert.Contains(t, out, `=== Results for "rambo" (6) ===`)
	assert.Contains(t, out, "1. Rambo: First Blood Part II (1985)")
	assert.NotContains(t, out, "Errors")
}

func TestSearchCommand_ShortText(t *testing.T) {
	fake := testhelpers.NewFakeOMDb(t)
	config.Set(testConfig(fake, t.TempDir()+"/moviesearch.db"))

	out, err := runCommand(t, searchCmd, "ra")

	require.NoError(t, err)
	assert.Contains(t, out, "Type at least 3 characters")
	assert.Empty(t, fake.Requests())
}

func TestDetailCommand_NotFound(t *testing.T) {
	fake := testhelpers.NewFakeOMDb(t)
	config.Set(testConfig(fake, t.TempDir()+"/moviesearch.db"))

	out, err := runCommand(t, detailCmd, "tt_bogus")

	require.Error(t, err)
	assert.Contains(t, out, "Movie not found. Make sure you have the right imdb id for the movie!")
}

func TestFavouritesCommands_SurviveRestart(t *testing.T) {
	fake := testhelpers.NewFakeOMDb(t)
	config.Set(testConfig(fake, t.TempDir()+"/moviesearch.db"))

	out, err := runCommand(t, favouritesAddCmd, "tt0462499")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Rambo (2008) to favourites.")

	out, err = runCommand(t, favouritesCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Favourites (1) ===")
	assert.Contains(t, out, "1. Rambo (2008) *")

	out, err = runCommand(t, favouritesRemoveCmd, "tt0462499")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed tt0462499 from favourites.")

	out, err = runCommand(t, favouritesCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No movies.")
}
