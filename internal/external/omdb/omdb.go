package omdb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/glefebvre/moviesearch/internal/circuitbreaker"
	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/models"
)

const (
	// DefaultBaseURL is the public OMDb endpoint
	DefaultBaseURL = "http://www.omdbapi.com/"

	defaultTimeout    = 10 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second

	service = "omdb"
)

// responseTrue is the value of the Response discriminator on success
const responseTrue = "True"

// Client handles OMDb API interactions
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
	circuitBrk *circuitbreaker.CircuitBreaker
	attempts   uint
	retryDelay time.Duration
}

// Config holds OMDb client configuration
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Breaker       circuitbreaker.Config
	Logger        *logger.Logger
}

// SearchResponse is the body of GET ?s=<text>
type SearchResponse struct {
	Response     string                 `json:"Response"`
	Search       []models.MovieListItem `json:"Search,omitempty"`
	TotalResults string                 `json:"totalResults,omitempty"`
	Error        string                 `json:"Error,omitempty"`
}

// OK reports whether OMDb answered with Response "True"
func (r *SearchResponse) OK() bool {
	return r.Response == responseTrue
}

// DetailResponse is the body of GET ?i=<imdbID>
type DetailResponse struct {
	models.MovieDetails
	Error string `json:"Error,omitempty"`
}

// OK reports whether OMDb answered with Response "True"
func (r *DetailResponse) OK() bool {
	return r.Response == responseTrue
}

// NewClient creates a new OMDb API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.AppLogger()
	}
	if cfg.Breaker.Cooldown == 0 {
		cfg.Breaker = circuitbreaker.DefaultConfig()
	}
	// Auth problems are configuration errors; tripping the breaker would
	// only hide them.
	cfg.Breaker.Counts = func(err error) bool {
		return !errors.IsCode(err, errors.CodeUnauthorized)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
		circuitBrk: circuitbreaker.New(cfg.Breaker),
		attempts:   uint(cfg.RetryAttempts),
		retryDelay: cfg.RetryDelay,
	}
}

// Search queries OMDb by title text. A Response of "False" is not an
// error; callers inspect OK() and Error.
func (c *Client) Search(ctx context.Context, text string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("s", text)
	return request[SearchResponse](ctx, c, params)
}

// MovieByID fetches the full record for one imdbID
func (c *Client) MovieByID(ctx context.Context, imdbID string) (*DetailResponse, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	return request[DetailResponse](ctx, c, params)
}

// BreakerState exposes the circuit breaker state for health reporting
func (c *Client) BreakerState() circuitbreaker.State {
	return c.circuitBrk.State()
}

// request runs one query through the breaker and the retry policy. Each
// attempt decodes into its own value; only a successful one is returned.
func request[T any](ctx context.Context, c *Client, params url.Values) (*T, error) {
	params.Set("apikey", c.apiKey)
	requestURL := c.baseURL + "?" + params.Encode()

	var result *T
	operation := func() error {
		return c.circuitBrk.Execute(ctx, func(ctx context.Context) error {
			var out T
			if err := c.get(ctx, requestURL, &out); err != nil {
				return err
			}
			result = &out
			return nil
		})
	}

	err := retry.Do(operation,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.IsRetryable(err) && !stderrors.Is(err, circuitbreaker.ErrOpen)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithFields(map[string]interface{}{
				"attempt": n + 1,
				"query":   redact(params),
			}).WarnContext(ctx, fmt.Sprintf("retrying OMDb request: %v", err))
		}),
	)
	if err == nil {
		return result, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"query": redact(params),
	}).ErrorContext(ctx, "OMDb request failed", err)

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return nil, err
	}
	return nil, errors.TransportError(service, "OMDb request failed", err)
}

func (c *Client) get(ctx context.Context, requestURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return errors.TransportError(service, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which carries the API key
		var urlErr *url.Error
		if stderrors.As(err, &urlErr) {
			err = urlErr.Err
		}
		code := errors.CodeTransportFailure
		if isTimeout(err) {
			code = errors.CodeServiceTimeout
		}
		return errors.Wrap(err, code, "OMDb request failed").WithContext("service", service)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.TransportError(service, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.New(errors.CodeRateLimited, "OMDb API rate limit exceeded").WithContext("service", service)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.CodeUnauthorized, fmt.Sprintf("OMDb rejected the API key: %s", apiMessage(body))).
			WithContext("service", service)
	case resp.StatusCode >= 500:
		return errors.New(errors.CodeServiceUnavailable, fmt.Sprintf("OMDb API error (status %d)", resp.StatusCode)).
			WithContext("service", service)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return errors.New(errors.CodeTransportFailure, fmt.Sprintf("OMDb API error (status %d): %s", resp.StatusCode, apiMessage(body))).
			WithContext("service", service)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return errors.TransportError(service, "failed to unmarshal response", err)
	}
	return nil
}

// apiMessage extracts OMDb's Error field, falling back to the raw body
func apiMessage(body []byte) string {
	var e struct {
		Error string `json:"Error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}

// redact drops the API key before a query is logged
func redact(params url.Values) string {
	c := url.Values{}
	for k, v := range params {
		if k == "apikey" {
			continue
		}
		c[k] = v
	}
	return c.Encode()
}
