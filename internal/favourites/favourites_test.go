package favourites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glefebvre/moviesearch/internal/blobstore"
	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
)

func rambo() models.FavouriteMovie {
	return models.FavouriteMovie{
		Title:  "Rambo",
		Year:   "2008",
		ImdbID: "tt0462499",
		Type:   models.MediaTypeMovie,
		Poster: "https://example.com/rambo.jpg",
	}
}

func firstBlood() models.FavouriteMovie {
	return models.FavouriteMovie{
		Title:  "First Blood",
		Year:   "1982",
		ImdbID: "tt0083944",
		Type:   models.MediaTypeMovie,
		Poster: "N/A",
	}
}

func TestLoad_InitializesMissingKey(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory()
	store := New(blobs, logger.Discard())

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	raw, ok, err := blobs.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(blobstore.NewMemory(), logger.Discard())

	require.NoError(t, store.Save(ctx, []models.FavouriteMovie{rambo(), firstBlood()}))

	items, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []string{items[0].ImdbID, items[1].ImdbID}
	assert.ElementsMatch(t, []string{"tt0462499", "tt0083944"}, ids)
	assert.Equal(t, "tt0083944", items[0].ImdbID, "loaded list is sorted by year")
	for _, item := range items {
		assert.True(t, item.IsFavourite)
	}
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory()
	store := New(blobs, logger.Discard())

	require.NoError(t, store.Save(ctx, nil))

	raw, _, err := blobs.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLoad_Corruption(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"object", `{"imdbID":"tt0462499"}`},
		{"null", "null"},
		{"empty", ""},
		{"truncated", `[{"imdbID":"tt0462499"`},
		{"missing id", `[{"Title":"Rambo"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			blobs := blobstore.NewMemory()
			require.NoError(t, blobs.Set(ctx, StorageKey, tt.raw))

			_, err := New(blobs, logger.Discard()).Load(ctx)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodePersistenceCorruption))

			raw, _, _ := blobs.Get(ctx, StorageKey)
			assert.Equal(t, tt.raw, raw, "corrupt value must not be overwritten")
		})
	}
}

func TestLoad_DropsDuplicates(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemory()
	require.NoError(t, blobs.Set(ctx, StorageKey,
		`[{"imdbID":"tt0462499","Title":"Rambo","Year":"2008"},{"imdbID":"tt0462499","Title":"Rambo (dup)","Year":"2008"}]`))

	items, err := New(blobs, logger.Discard()).Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rambo", items[0].Title)
}

func TestDecode_NumericYear(t *testing.T) {
	items, err := Decode(`[{"imdbID":"tt0462499","Year":2008}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2008, items[0].Year.Value())
}
