package api

import (
	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// UpdateSearchRequest sets the search text. An empty text clears the
// results.
type UpdateSearchRequest struct {
	Text *string `json:"text" binding:"required"`
}

// SearchResponse is the search text with its outcome
type SearchResponse struct {
	SearchText   string              `json:"searchText"`
	Searches     []string            `json:"searches"`
	SearchStatus models.SearchStatus `json:"searchStatus"`
	IsQuerying   bool                `json:"isQuerying"`
	Movies       []MovieResponse     `json:"movies"`
	APIErrors    []string            `json:"apiErrors"`
}

// StatusResponse is the search lifecycle
type StatusResponse struct {
	SearchStatus models.SearchStatus `json:"searchStatus"`
	IsQuerying   bool                `json:"isQuerying"`
}

// MovieResponse is a list item with its poster already resolved
type MovieResponse struct {
	models.MovieListItem
	PosterURL            string `json:"posterUrl"`
	ShowEmojiPlaceholder bool   `json:"showEmojiPlaceholder"`
}

// DetailResponse is the detail record with its poster already resolved
type DetailResponse struct {
	models.MovieDetails
	PosterURL            string `json:"posterUrl"`
	ShowEmojiPlaceholder bool   `json:"showEmojiPlaceholder"`
}

// FavouriteRequest adds a favourite. Only imdbID is required; missing
// fields are filled from the current results when the movie is known.
type FavouriteRequest struct {
	ImdbID string           `json:"imdbID" binding:"required"`
	Title  string           `json:"Title"`
	Year   models.Year      `json:"Year"`
	Type   models.MediaType `json:"Type"`
	Poster string           `json:"Poster"`
}

// ListItem converts the request to a list item
func (r FavouriteRequest) ListItem() models.MovieListItem {
	return models.MovieListItem{
		Title:  r.Title,
		Year:   r.Year,
		ImdbID: r.ImdbID,
		Type:   r.Type,
		Poster: r.Poster,
	}
}

// PosterResponse is the fallback state of one poster
type PosterResponse struct {
	ImdbID string `json:"imdbID"`
	imagefallback.State
}

// ErrorsResponse is the error log
type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

// HealthResponse reports the service's dependencies
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Storage string `json:"storage"`
	Catalog string `json:"catalog,omitempty"`
	Posters int    `json:"posters"`
	Error   string `json:"error,omitempty"`
}
