// Package moviestore holds the movie search state: the search text and
// history, the current result set, the detail record, the favourites list
// and the error log. The favourites list is mirrored to a blob store.
//
// A Store is created with New, loaded with Initialize and stopped with
// Close. All methods are safe for concurrent use. Remote calls run without
// holding the state lock, and only the response of the most recent search
// (or detail fetch) is applied.
package moviestore

import (
	"context"
	"sync"

	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/external/omdb"
	"github.com/glefebvre/moviesearch/internal/favourites"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
)

const component = "movie store"

// DefaultMinQueryLength is the shortest search text that is sent to OMDb
const DefaultMinQueryLength = 3

// Catalog is the remote movie database
type Catalog interface {
	Search(ctx context.Context, text string) (*omdb.SearchResponse, error)
	MovieByID(ctx context.Context, imdbID string) (*omdb.DetailResponse, error)
}

// Config tunes a Store
type Config struct {
	// MaxErrors caps the error log; the oldest entries are dropped first.
	// Zero keeps every entry.
	MaxErrors int
	// MinQueryLength is the shortest text that triggers a search
	MinQueryLength int
	Logger         *logger.Logger
}

// Store is the search and favourites state container
type Store struct {
	catalog    Catalog
	favourites *favourites.Store
	cfg        Config
	logger     *logger.Logger

	mu             sync.Mutex
	ready          bool
	searchText     string
	searches       []string
	searchData     []models.MovieListItem
	movies         []models.MovieListItem
	movieToDetail  *models.MovieDetails
	favouriteList  []models.FavouriteMovie
	apiErrors      []string
	status         models.SearchStatus
	searchSeq      uint64
	detailSeq      uint64
	searchInFlight bool
	detailInFlight bool
	cancelSearch   context.CancelFunc
	cancelDetail   context.CancelFunc
}

// New creates a Store. It performs no I/O; call Initialize before use.
func New(catalog Catalog, favs *favourites.Store, cfg Config) *Store {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = DefaultMinQueryLength
	}
	if cfg.MaxErrors < 0 {
		cfg.MaxErrors = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}

	return &Store{
		catalog:    catalog,
		favourites: favs,
		cfg:        cfg,
		logger:     cfg.Logger,
	}
}

// Initialize loads the persisted favourites. A missing list is created
// empty. A malformed list is returned as a PERSISTENCE_CORRUPTION error and
// the store stays unusable.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.favourites.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load favourites", err)
		return err
	}

	s.favouriteList = items
	s.ready = true

	s.logger.WithFields(map[string]interface{}{
		"favourites": len(items),
	}).InfoContext(ctx, "movie store initialized")
	return nil
}

// Close cancels in-flight requests and makes the store unusable until the
// next Initialize.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelInFlight()
	s.ready = false
	return nil
}

// Ready reports whether Initialize has completed
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Store) cancelInFlight() {
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	if s.cancelDetail != nil {
		s.cancelDetail()
		s.cancelDetail = nil
	}
	s.searchSeq++
	s.detailSeq++
	s.searchInFlight = false
	s.detailInFlight = false
}

func (s *Store) checkReady() error {
	if !s.ready {
		return errors.NotReadyError(component)
	}
	return nil
}

// appendError adds msg to the error log, dropping the oldest entries once
// MaxErrors is reached. Callers hold mu.
func (s *Store) appendError(msg string) {
	s.apiErrors = append(s.apiErrors, msg)
	if limit := s.cfg.MaxErrors; limit > 0 && len(s.apiErrors) > limit {
		s.apiErrors = append([]string(nil), s.apiErrors[len(s.apiErrors)-limit:]...)
	}
}

// SearchText returns the text last passed to UpdateSearchText
func (s *Store) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchText
}

// Searches returns the search history, most recent first
func (s *Store) Searches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.searches...)
}

// SearchData returns the last search response as received, before filtering
func (s *Store) SearchData() []models.MovieListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MovieListItem{}, s.searchData...)
}

// Movies returns the published result set: movies only, oldest first
func (s *Store) Movies() []models.MovieListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MovieListItem{}, s.movies...)
}

// MovieToDetail returns the current detail record, or nil
func (s *Store) MovieToDetail() *models.MovieDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDetail(s.movieToDetail)
}

// FavouriteMovies returns the favourites, oldest first
func (s *Store) FavouriteMovies() []models.FavouriteMovie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FavouriteMovie{}, s.favouriteList...)
}

// IsQuerying reports whether a search or detail fetch is in flight
func (s *Store) IsQuerying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchInFlight || s.detailInFlight
}

// APIErrors returns the error log, oldest first
func (s *Store) APIErrors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.apiErrors...)
}

// ClearErrors empties the error log
func (s *Store) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiErrors = nil
}

// SearchStatus returns the lifecycle flags of the last search
func (s *Store) SearchStatus() models.SearchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot is a consistent copy of the whole state
type Snapshot struct {
	SearchText      string                  `json:"searchText"`
	Searches        []string                `json:"searches"`
	Movies          []models.MovieListItem  `json:"movies"`
	MovieToDetail   *models.MovieDetails    `json:"movieToDetail,omitempty"`
	FavouriteMovies []models.FavouriteMovie `json:"favouriteMovies"`
	IsQuerying      bool                    `json:"isQuerying"`
	APIErrors       []string                `json:"apiErrors"`
	SearchStatus    models.SearchStatus     `json:"searchStatus"`
}

// Snapshot returns every handle read under a single lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		SearchText:      s.searchText,
		Searches:        append([]string{}, s.searches...),
		Movies:          append([]models.MovieListItem{}, s.movies...),
		MovieToDetail:   copyDetail(s.movieToDetail),
		FavouriteMovies: append([]models.FavouriteMovie{}, s.favouriteList...),
		IsQuerying:      s.searchInFlight || s.detailInFlight,
		APIErrors:       append([]string{}, s.apiErrors...),
		SearchStatus:    s.status,
	}
}

func copyDetail(d *models.MovieDetails) *models.MovieDetails {
	if d == nil {
		return nil
	}
	c := *d
	c.Ratings = append([]models.MovieRating(nil), d.Ratings...)
	return &c
}
