package testing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/glefebvre/moviesearch/internal/blobstore"
	"github.com/glefebvre/moviesearch/internal/database"
	"github.com/glefebvre/moviesearch/internal/external/omdb"
	"github.com/glefebvre/moviesearch/internal/favourites"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
	"github.com/glefebvre/moviesearch/internal/moviestore"
)

// TestAPIKey is the key the fake OMDb server accepts
const TestAPIKey = "test-key"

// TestDB creates an in-memory SQLite database for testing
func TestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLiteMemory()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	return db
}

// AssertCount verifies the count of records in a table
func AssertCount(t *testing.T, db *gorm.DB, model interface{}, expected int64, message string) {
	t.Helper()
	var count int64
	db.Model(model).Count(&count)
	if count != expected {
		t.Fatalf("%s: expected count %d, got %d", message, expected, count)
	}
}

// NewBlobStore returns a blob store backed by a fresh in-memory database
func NewBlobStore(t *testing.T) (*blobstore.GormStore, *gorm.DB) {
	t.Helper()
	db := TestDB(t)
	return blobstore.NewGorm(db), db
}

// NewStore builds an initialized movie store over catalog and blobs
func NewStore(t *testing.T, catalog moviestore.Catalog, blobs blobstore.Store) *moviestore.Store {
	t.Helper()

	store := moviestore.New(catalog, favourites.New(blobs, logger.Discard()), moviestore.Config{
		MaxErrors: 100,
		Logger:    logger.Discard(),
	})
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize movie store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// NewClient returns an OMDb client pointed at server
func NewClient(server *FakeOMDb) *omdb.Client {
	return omdb.NewClient(omdb.Config{
		BaseURL:       server.URL() + "/",
		APIKey:        TestAPIKey,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		Logger:        logger.Discard(),
	})
}

// Movie creates a list item, Rambo (2008) unless overridden
func Movie(overrides ...func(*models.MovieListItem)) models.MovieListItem {
	item := models.MovieListItem{
		Title:  "Rambo",
		Year:   "2008",
		ImdbID: "tt0462499",
		Type:   models.MediaTypeMovie,
		Poster: "https://m.media-amazon.com/images/M/MV5BMTI5Mjg1MzM4NF5BMl5BanBnXkFtZTcwNTAyNzUzMw@@._V1_SX300.jpg",
	}

	for _, override := range overrides {
		override(&item)
	}
	return item
}

// WithImdbID sets the imdbID of a list item
func WithImdbID(id string) func(*models.MovieListItem) {
	return func(item *models.MovieListItem) {
		item.ImdbID = id
	}
}

// WithTitle sets the title of a list item
func WithTitle(title string) func(*models.MovieListItem) {
	return func(item *models.MovieListItem) {
		item.Title = title
	}
}

// WithYear sets the year of a list item
func WithYear(year string) func(*models.MovieListItem) {
	return func(item *models.MovieListItem) {
		item.Year = models.Year(year)
	}
}

// WithType sets the media type of a list item
func WithType(typ models.MediaType) func(*models.MovieListItem) {
	return func(item *models.MovieListItem) {
		item.Type = typ
	}
}

// WithPoster sets the poster URL of a list item
func WithPoster(url string) func(*models.MovieListItem) {
	return func(item *models.MovieListItem) {
		item.Poster = url
	}
}

// RamboSearch is a search response for "rambo": six movies, one series and
// three games
func RamboSearch() []models.MovieListItem {
	return []models.MovieListItem{
		Movie(),
		Movie(WithTitle("Rambo: First Blood Part II"), WithYear("1985"), WithImdbID("tt0089880")),
		Movie(WithTitle("Rambo III"), WithYear("1988"), WithImdbID("tt0095956")),
		Movie(WithTitle("Rambo: Last Blood"), WithYear("2019"), WithImdbID("tt1206885")),
		Movie(WithYear("1986"), WithImdbID("tt0222619"), WithType(models.MediaTypeSeries)),
		Movie(WithTitle("Arthur Rambo"), WithYear("2021"), WithImdbID("tt10951972")),
		Movie(WithTitle("Rambo III"), WithYear("1989"), WithImdbID("tt0301766"), WithType(models.MediaTypeGame)),
		Movie(WithYear("2012"), WithImdbID("tt3107798")),
		Movie(WithTitle("Rambo: First Blood Part II"), WithYear("1986"), WithImdbID("tt0301768"), WithType(models.MediaTypeGame)),
		Movie(WithYear("1987"), WithImdbID("tt0301765"), WithType(models.MediaTypeGame)),
	}
}

// RamboDetail is the detail record of Rambo (2008)
func RamboDetail() models.MovieDetails {
	return models.MovieDetails{
		Title:     "Rambo",
		Year:      "2008",
		Rated:     "R",
		Released:  "25 Jan 2008",
		Runtime:   "92 min",
		Genre:     "Action, Adventure, Thriller",
		Director:  "Sylvester Stallone",
		Writer:    "Art Monterastelli, Sylvester Stallone, David Morrell",
		Actors:    "Sylvester Stallone, Julie Benz, Matthew Marsden",
		Plot:      "In Thailand, John Rambo joins a group of mercenaries to venture into war-torn Burma, and rescue a group of Christian aid workers who were kidnapped by the ruthless local infantry unit.",
		Language:  "English, Burmese, Thai",
		Country:   "Germany, United States",
		Awards:    "1 win & 1 nomination",
		Poster:    Movie().Poster,
		Ratings: []models.MovieRating{
			{Source: "Internet Movie Database", Value: "7.0/10"},
			{Source: "Rotten Tomatoes", Value: "38%"},
			{Source: "Metacritic", Value: "46/100"},
		},
		Metascore:  "46",
		ImdbRating: "7.0",
		ImdbVotes:  "248,136",
		ImdbID:     "tt0462499",
		Type:       models.MediaTypeMovie,
		DVD:        "N/A",
		BoxOffice:  "$42,754,105",
		Production: "N/A",
		Website:    "N/A",
		Response:   "True",
	}
}

// FakeOMDb is an httptest server speaking the OMDb query protocol
type FakeOMDb struct {
	server *httptest.Server

	mu       sync.Mutex
	searches map[string][]models.MovieListItem
	details  map[string]models.MovieDetails
	requests []string
}

// NewFakeOMDb starts a server that knows the "rambo" search and the
// Rambo (2008) detail record
func NewFakeOMDb(t *testing.T) *FakeOMDb {
	t.Helper()

	f := &FakeOMDb{
		searches: map[string][]models.MovieListItem{"rambo": RamboSearch()},
		details:  map[string]models.MovieDetails{"tt0462499": RamboDetail()},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the server's base URL
func (f *FakeOMDb) URL() string {
	return f.server.URL
}

// AddSearch registers the results for text
func (f *FakeOMDb) AddSearch(text string, items []models.MovieListItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[strings.ToLower(text)] = items
}

// AddDetail registers a detail record
func (f *FakeOMDb) AddDetail(d models.MovieDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[d.ImdbID] = d
}

// Requests returns the query strings received so far, without the key
func (f *FakeOMDb) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.requests...)
}

func (f *FakeOMDb) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")

	if query.Get("apikey") != TestAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Invalid API key!"})
		return
	}
	query.Del("apikey")

	f.mu.Lock()
	f.requests = append(f.requests, query.Encode())
	f.mu.Unlock()

	switch {
	case query.Has("s"):
		f.mu.Lock()
		items, ok := f.searches[strings.ToLower(query.Get("s"))]
		f.mu.Unlock()
		if !ok {
			json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
			return
		}
		json.NewEncoder(w).Encode(omdb.SearchResponse{Response: "True", Search: items})
	case query.Has("i"):
		f.mu.Lock()
		d, ok := f.details[query.Get("i")]
		f.mu.Unlock()
		if !ok {
			json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
			return
		}
		json.NewEncoder(w).Encode(d)
	default:
		json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "No API key provided."})
	}
}
