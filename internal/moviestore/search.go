package moviestore

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/external/omdb"
	"github.com/glefebvre/moviesearch/internal/models"
)

// Messages appended to the error log
const (
	msgSearchNotFound = "Movie not found. Make sure you have the right spelling!"
	msgSearchFailed   = `Failed in fetching list of movies, "%s". Try again later!`
	msgDetailNotFound = "Movie not found. Make sure you have the right imdb id for the movie!"
	msgDetailFailed   = `Failed to fetch movie, "%s".  Check if the movie exists and try again later!`
)

// UpdateSearchText stores text and, when it is long enough, searches OMDb
// for it. The current results are cleared before the query is sent.
//
// Remote failures are recorded in the error log and the search status; the
// returned error is only set when the store is not initialized. A search
// that is superseded by a newer call returns without touching the state.
func (s *Store) UpdateSearchText(ctx context.Context, text string) error {
	s.mu.Lock()
	if err := s.checkReady(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.searchText = text
	s.searchSeq++
	token := s.searchSeq
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	s.resetSearchData()

	if utf8.RuneCountInString(text) < s.cfg.MinQueryLength {
		s.searchInFlight = false
		s.status = models.SearchStatus{}
		s.mu.Unlock()
		return nil
	}

	s.addSearchToHistory(text)
	s.searchInFlight = true
	s.status = models.SearchStatus{SearchedForMovie: true}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelSearch = cancel
	s.mu.Unlock()

	s.executeSearch(ctx, token, text)
	return nil
}

func (s *Store) executeSearch(ctx context.Context, token uint64, text string) {
	resp, err := s.catalog.Search(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.searchSeq {
		s.logger.WithFields(map[string]interface{}{
			"search": text,
		}).Debug("discarding response of superseded search")
		return
	}
	s.cancelSearch = nil
	s.searchInFlight = false
	s.status.QueryCompleted = true
	s.status.QueryReturnedEmpty = true

	fields := map[string]interface{}{"search": text}

	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			s.status.QueryCompleted = false
			return
		}
		s.logger.WithFields(fields).ErrorContext(ctx, "search failed", err)
		s.appendError(fmt.Sprintf(msgSearchFailed, describe(err)))
		return
	}
	if resp == nil || !resp.OK() || len(resp.Search) == 0 {
		if resp != nil {
			fields["api_error"] = resp.Error
		}
		s.logger.WithFields(fields).InfoContext(ctx, "search returned no results")
		s.appendError(msgSearchNotFound)
		return
	}

	s.publish(resp)

	fields["received"] = len(resp.Search)
	fields["published"] = len(s.movies)
	s.logger.WithFields(fields).InfoContext(ctx, "search completed")
}

// publish stores a successful response. Callers hold mu.
func (s *Store) publish(resp *omdb.SearchResponse) {
	s.searchData = append([]models.MovieListItem(nil), resp.Search...)
	for i := range s.searchData {
		s.searchData[i].IsFavourite = s.isFavourite(s.searchData[i].ImdbID)
	}

	s.movies = models.FilterMovies(s.searchData)
	models.SortByYear(s.movies)
	s.status.QueryReturnedEmpty = len(s.movies) == 0
}

// ResetSearchData clears the raw and the published result sets
func (s *Store) ResetSearchData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetSearchData()
}

func (s *Store) resetSearchData() {
	s.searchData = []models.MovieListItem{}
	s.movies = []models.MovieListItem{}
}

// addSearchToHistory moves text to the front of the search history,
// removing any earlier occurrence. Callers hold mu.
func (s *Store) addSearchToHistory(text string) {
	history := make([]string, 0, len(s.searches)+1)
	history = append(history, text)
	for _, prev := range s.searches {
		if prev != text {
			history = append(history, prev)
		}
	}
	s.searches = history
}

// describe renders err for the error log without internal codes
func describe(err error) string {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Err == nil {
		return appErr.Message
	}

	cause := appErr.Err
	var urlErr *url.Error
	if stderrors.As(cause, &urlErr) {
		cause = urlErr.Err
	}
	return fmt.Sprintf("%s: %v", appErr.Message, cause)
}
