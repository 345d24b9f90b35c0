// Package favourites persists the favourite movies list as a JSON array
// under a single blob store key.
package favourites

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/glefebvre/moviesearch/internal/blobstore"
	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
)

// StorageKey is the blob key the list is stored under
const StorageKey = "favouriteMovies"

// Store loads and saves the favourites list
type Store struct {
	blobs  blobstore.Store
	key    string
	logger *logger.Logger
}

// New creates a Store backed by blobs
func New(blobs blobstore.Store, log *logger.Logger) *Store {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Store{blobs: blobs, key: StorageKey, logger: log}
}

// Load reads the persisted list. When the key is absent it is initialised
// with an empty list. A value that is not a JSON array of movies is
// reported as PERSISTENCE_CORRUPTION and left untouched.
//
// Every returned item has IsFavourite set, entries are unique by imdbID and
// sorted by year.
func (s *Store) Load(ctx context.Context) ([]models.FavouriteMovie, error) {
	raw, ok, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.Save(ctx, nil); err != nil {
			return nil, err
		}
		return []models.FavouriteMovie{}, nil
	}

	items, err := Decode(raw)
	if err != nil {
		return nil, errors.CorruptionError(s.key, err)
	}

	deduped := Dedupe(items)
	if dropped := len(items) - len(deduped); dropped > 0 {
		s.logger.WithFields(map[string]interface{}{
			"key":     s.key,
			"dropped": dropped,
		}).Warn("dropped duplicate favourites from stored list")
	}
	for i := range deduped {
		deduped[i].IsFavourite = true
	}
	models.SortByYear(deduped)
	return deduped, nil
}

// Save replaces the persisted list with items
func (s *Store) Save(ctx context.Context, items []models.FavouriteMovie) error {
	raw, err := Encode(items)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode favourites")
	}
	return s.blobs.Set(ctx, s.key, raw)
}

// Encode serializes items; a nil list is written as []
func Encode(items []models.FavouriteMovie) (string, error) {
	if items == nil {
		items = []models.FavouriteMovie{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a serialized list. Anything but a JSON array is rejected,
// including null.
func Decode(raw string) ([]models.FavouriteMovie, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}

	var items []models.FavouriteMovie
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ImdbID == "" {
			return nil, errMissingID
		}
	}
	return items, nil
}

// Dedupe keeps the first entry for each imdbID
func Dedupe(items []models.FavouriteMovie) []models.FavouriteMovie {
	seen := make(map[string]bool, len(items))
	out := make([]models.FavouriteMovie, 0, len(items))
	for _, item := range items {
		if seen[item.ImdbID] {
			continue
		}
		seen[item.ImdbID] = true
		out = append(out, item)
	}
	return out
}

var (
	errNotArray  = errors.New(errors.CodeInvalidInput, "favourites value is not a JSON array")
	errMissingID = errors.New(errors.CodeInvalidInput, "favourite entry has no imdbID")
)
