package moviestore

import (
	"context"

	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/models"
)

// AddMovieToFavourites marks item as favourite. An item whose imdbID is
// already a favourite is not added twice. The list is re-sorted, persisted,
// and the flag is set on the matching result and the open detail record.
//
// When persisting fails nothing changes in memory and the error is
// returned.
func (s *Store) AddMovieToFavourites(ctx context.Context, item models.MovieListItem) error {
	if item.ImdbID == "" {
		return errors.ValidationError("imdbID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReady(); err != nil {
		return err
	}

	item.IsFavourite = true
	next := append([]models.FavouriteMovie{}, s.favouriteList...)
	if models.IndexByID(next, item.ImdbID) < 0 {
		next = append(next, item)
	}
	models.SortByYear(next)

	if err := s.commitFavourites(ctx, next); err != nil {
		return err
	}
	s.setFavouriteFlag(item.ImdbID, true)

	s.logger.WithFields(map[string]interface{}{
		"imdb_id":    item.ImdbID,
		"favourites": len(next),
	}).InfoContext(ctx, "added favourite")
	return nil
}

// RemoveMovieFromFavourites clears the favourite flag for item. Removing an
// item that is not a favourite leaves the list unchanged but still
// persists it.
func (s *Store) RemoveMovieFromFavourites(ctx context.Context, item models.MovieListItem) error {
	if item.ImdbID == "" {
		return errors.ValidationError("imdbID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkReady(); err != nil {
		return err
	}

	next := make([]models.FavouriteMovie, 0, len(s.favouriteList))
	for _, fav := range s.favouriteList {
		if fav.ImdbID != item.ImdbID {
			next = append(next, fav)
		}
	}

	if err := s.commitFavourites(ctx, next); err != nil {
		return err
	}
	s.setFavouriteFlag(item.ImdbID, false)

	s.logger.WithFields(map[string]interface{}{
		"imdb_id":    item.ImdbID,
		"favourites": len(next),
	}).InfoContext(ctx, "removed favourite")
	return nil
}

// IsFavourite reports whether imdbID is in the favourites list
func (s *Store) IsFavourite(imdbID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFavourite(imdbID)
}

// LiveIDs returns the imdbIDs the store still refers to: the raw results,
// the favourites and the open detail record. An id may appear twice.
func (s *Store) LiveIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.searchData)+len(s.favouriteList)+1)
	for _, item := range s.searchData {
		ids = append(ids, item.ImdbID)
	}
	for _, fav := range s.favouriteList {
		ids = append(ids, fav.ImdbID)
	}
	if s.movieToDetail != nil {
		ids = append(ids, s.movieToDetail.ImdbID)
	}
	return ids
}

// FindItem looks imdbID up in the results, the favourites and the detail
// record, in that order
func (s *Store) FindItem(imdbID string) (models.MovieListItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := models.IndexByID(s.searchData, imdbID); i >= 0 {
		return s.searchData[i], true
	}
	if i := models.IndexByID(s.favouriteList, imdbID); i >= 0 {
		return s.favouriteList[i], true
	}
	if s.movieToDetail != nil && s.movieToDetail.ImdbID == imdbID {
		return s.movieToDetail.ListItem(), true
	}
	return models.MovieListItem{}, false
}

func (s *Store) isFavourite(imdbID string) bool {
	return models.IndexByID(s.favouriteList, imdbID) >= 0
}

// commitFavourites persists next and adopts it. Callers hold mu.
func (s *Store) commitFavourites(ctx context.Context, next []models.FavouriteMovie) error {
	if err := s.favourites.Save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist favourites", err)
		return err
	}
	s.favouriteList = next
	return nil
}

// setFavouriteFlag updates every copy of imdbID held by the store. Callers
// hold mu.
func (s *Store) setFavouriteFlag(imdbID string, value bool) {
	for _, list := range [][]models.MovieListItem{s.searchData, s.movies} {
		if i := models.IndexByID(list, imdbID); i >= 0 {
			list[i].IsFavourite = value
		}
	}
	if s.movieToDetail != nil && s.movieToDetail.ImdbID == imdbID {
		s.movieToDetail.IsFavourite = value
	}
}
