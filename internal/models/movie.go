package models

import "sort"

// MediaType classifies a catalog entry
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeSeries  MediaType = "series"
	MediaTypeEpisode MediaType = "episode"
	MediaTypeGame    MediaType = "game"
)

// NotAvailable is OMDb's placeholder for missing values
const NotAvailable = "N/A"

// MovieListItem is one entry of an OMDb search response
type MovieListItem struct {
	Title       string    `json:"Title"`
	Year        Year      `json:"Year"`
	ImdbID      string    `json:"imdbID"`
	Type        MediaType `json:"Type"`
	Poster      string    `json:"Poster"`
	IsFavourite bool      `json:"isFavourite,omitempty"`
}

// FavouriteMovie is a movie the user marked as favourite. It is stored with
// the same field names as MovieListItem.
type FavouriteMovie = MovieListItem

// MovieRating is one source's rating of a movie
type MovieRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// MovieDetails is the full OMDb record for a single imdbID
type MovieDetails struct {
	Title       string        `json:"Title"`
	Year        Year          `json:"Year"`
	Rated       string        `json:"Rated"`
	Released    string        `json:"Released"`
	Runtime     string        `json:"Runtime"`
	Genre       string        `json:"Genre"`
	Director    string        `json:"Director"`
	Writer      string        `json:"Writer"`
	Actors      string        `json:"Actors"`
	Plot        string        `json:"Plot"`
	Language    string        `json:"Language"`
	Country     string        `json:"Country"`
	Awards      string        `json:"Awards"`
	Poster      string        `json:"Poster"`
	Ratings     []MovieRating `json:"Ratings"`
	Metascore   string        `json:"Metascore"`
	ImdbRating  string        `json:"imdbRating"`
	ImdbVotes   string        `json:"imdbVotes"`
	ImdbID      string        `json:"imdbID"`
	Type        MediaType     `json:"Type"`
	DVD         string        `json:"DVD"`
	BoxOffice   string        `json:"BoxOffice"`
	Production  string        `json:"Production"`
	Website     string        `json:"Website"`
	Response    string        `json:"Response"`
	IsFavourite bool          `json:"isFavourite,omitempty"`
}

// ListItem returns the list representation of the detail record
func (d MovieDetails) ListItem() MovieListItem {
	return MovieListItem{
		Title:       d.Title,
		Year:        d.Year,
		ImdbID:      d.ImdbID,
		Type:        d.Type,
		Poster:      d.Poster,
		IsFavourite: d.IsFavourite,
	}
}

// SearchStatus describes where the last search is in its lifecycle
type SearchStatus struct {
	SearchedForMovie   bool `json:"searchedForMovie"`
	QueryCompleted     bool `json:"queryCompleted"`
	QueryReturnedEmpty bool `json:"queryReturnedEmpty"`
}

// FilterMovies keeps the entries whose type is movie
func FilterMovies(items []MovieListItem) []MovieListItem {
	out := make([]MovieListItem, 0, len(items))
	for _, item := range items {
		if item.Type == MediaTypeMovie {
			out = append(out, item)
		}
	}
	return out
}

// SortByYear sorts items in place, oldest first. The sort is stable.
func SortByYear(items []MovieListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Year.Less(items[j].Year)
	})
}

// IndexByID returns the position of the item with imdbID, or -1
func IndexByID(items []MovieListItem, imdbID string) int {
	for i := range items {
		if items[i].ImdbID == imdbID {
			return i
		}
	}
	return -1
}
