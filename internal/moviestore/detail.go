package moviestore

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/models"
)

// ErrSuperseded is returned by FetchMovieDetail when a newer fetch started
// before the response arrived. The response is dropped.
var ErrSuperseded = errors.New(errors.CodeSuperseded, "request superseded by a newer one")

// FetchMovieDetail clears the current detail record and loads the one for
// imdbID. On success the record, flagged with its favourite state, becomes
// the current detail and a copy is returned.
//
// A NOT_FOUND or TRANSPORT_FAILURE error is returned after the matching
// message was added to the error log; the detail stays unset.
func (s *Store) FetchMovieDetail(ctx context.Context, imdbID string) (*models.MovieDetails, error) {
	imdbID = strings.TrimSpace(imdbID)

	s.mu.Lock()
	if err := s.checkReady(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.movieToDetail = nil
	if imdbID == "" {
		s.mu.Unlock()
		return nil, errors.ValidationError("imdbID is required")
	}

	s.detailSeq++
	token := s.detailSeq
	if s.cancelDetail != nil {
		s.cancelDetail()
	}
	s.detailInFlight = true

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelDetail = cancel
	s.mu.Unlock()

	resp, err := s.catalog.MovieByID(ctx, imdbID)

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := map[string]interface{}{"imdb_id": imdbID}

	if token != s.detailSeq {
		s.logger.WithFields(fields).Debug("discarding response of superseded detail fetch")
		return nil, ErrSuperseded
	}
	s.cancelDetail = nil
	s.detailInFlight = false

	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.WithFields(fields).ErrorContext(ctx, "detail fetch failed", err)
		s.appendError(fmt.Sprintf(msgDetailFailed, describe(err)))
		return nil, errors.Wrap(err, errors.CodeTransportFailure, "failed to fetch movie").
			WithContext("imdb_id", imdbID)
	}
	if resp == nil || !resp.OK() {
		if resp != nil {
			fields["api_error"] = resp.Error
		}
		s.logger.WithFields(fields).InfoContext(ctx, "movie not found")
		s.appendError(msgDetailNotFound)
		return nil, errors.NotFoundError("movie", imdbID)
	}

	detail := resp.MovieDetails
	detail.Ratings = append([]models.MovieRating(nil), resp.Ratings...)
	detail.IsFavourite = s.isFavourite(detail.ImdbID)
	s.movieToDetail = &detail

	s.logger.WithFields(fields).InfoContext(ctx, "detail fetched")
	return copyDetail(s.movieToDetail), nil
}
