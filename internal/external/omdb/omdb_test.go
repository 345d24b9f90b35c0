package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glefebvre/moviesearch/internal/circuitbreaker"
	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL:       server.URL + "/",
		APIKey:        "test-key",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Logger:        logger.Discard(),
	})
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: "k", Logger: logger.Discard()})

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, uint(defaultAttempts), client.attempts)
	assert.Equal(t, circuitbreaker.StateClosed, client.BreakerState())
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "test-key", query.Get("apikey"))
		assert.Equal(t, "rambo first blood", query.Get("s"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Search": [
				{"Title":"Rambo","Year":"2008","imdbID":"tt0462499","Type":"movie","Poster":"https://example.com/rambo.jpg"},
				{"Title":"Rambo III","Year":"1989","imdbID":"tt0301766","Type":"game","Poster":"N/A"}
			],
			"totalResults":"2",
			"Response":"True"
		}`))
	})

	resp, err := client.Search(context.Background(), "rambo first blood")
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Len(t, resp.Search, 2)
	assert.Equal(t, "tt0462499", resp.Search[0].ImdbID)
	assert.Equal(t, models.Year("2008"), resp.Search[0].Year)
	assert.Equal(t, models.MediaTypeGame, resp.Search[1].Type)
}

func TestSearch_ResponseFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	resp, err := client.Search(context.Background(), "zzz_no_match")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "Movie not found!", resp.Error)
	assert.Empty(t, resp.Search)
}

func TestMovieByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt0462499", r.URL.Query().Get("i"))
		w.Write([]byte(`{
			"Title":"Rambo","Year":"2008","Rated":"R","imdbID":"tt0462499","Type":"movie",
			"Ratings":[{"Source":"Internet Movie Database","Value":"7.0/10"},{"Source":"Rotten Tomatoes","Value":"38%"}],
			"Response":"True"
		}`))
	})

	resp, err := client.MovieByID(context.Background(), "tt0462499")
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.Equal(t, "Rambo", resp.Title)
	require.Len(t, resp.Ratings, 2)
	assert.Equal(t, "Rotten Tomatoes", resp.Ratings[1].Source)
}

func TestMovieByID_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	resp, err := client.MovieByID(context.Background(), "tt_bogus")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "Incorrect IMDb ID.", resp.Error)
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	_, err := client.Search(context.Background(), "rambo")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequest_GivesUpAfterAttempts(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "rambo")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeRateLimited))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRequest_Unauthorized(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	})

	_, err := client.MovieByID(context.Background(), "tt0462499")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "Invalid API key!")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "auth failures are not retried")
}

func TestRequest_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Search": [`))
	})

	_, err := client.Search(context.Background(), "rambo")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTransportFailure))
}

func TestRequest_TypeMismatchReturnsNoRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"True","Search":[{"imdbID":"tt0462499","Title":"Rambo"}],"totalResults":1}`))
	})

	resp, err := client.Search(context.Background(), "rambo")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.IsCode(err, errors.CodeTransportFailure))
}

func TestRequest_RetryKeepsOnlyLastAttempt(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"Response":"True","Search":[{"imdbID":"tt0462499","Title":"Rambo"}]}`))
			return
		}
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	resp, err := client.Search(context.Background(), "rambo")
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Empty(t, resp.Search)
	assert.Equal(t, "Movie not found!", resp.Error)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequest_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/"
	server.Close()

	client := NewClient(Config{
		BaseURL:    url,
		APIKey:     "k",
		RetryDelay: time.Millisecond,
		Logger:     logger.Discard(),
	})

	_, err := client.Search(context.Background(), "rambo")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTransportFailure))
}

func TestRequest_BreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:       server.URL + "/",
		APIKey:        "k",
		RetryAttempts: 1,
		Breaker:       circuitbreaker.Config{MaxFailures: 2, Cooldown: time.Hour},
		Logger:        logger.Discard(),
	})

	for i := 0; i < 2; i++ {
		_, err := client.Search(context.Background(), "rambo")
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.BreakerState())

	_, err := client.Search(context.Background(), "rambo")
	require.Error(t, err)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRedact(t *testing.T) {
	got := redact(map[string][]string{"apikey": {"secret"}, "s": {"rambo"}})
	assert.Equal(t, "s=rambo", got)
}

func TestRequest_ErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/"
	server.Close()

	client := NewClient(Config{
		BaseURL:       url,
		APIKey:        "super-secret",
		RetryAttempts: 1,
		Logger:        logger.Discard(),
	})

	_, err := client.MovieByID(context.Background(), "tt0462499")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}
