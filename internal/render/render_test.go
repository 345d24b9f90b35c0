package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/models"
)

func TestRatings(t *testing.T) {
	tests := []struct {
		name    string
		ratings []models.MovieRating
		want    string
	}{
		{
			name: "three sources",
			ratings: []models.MovieRating{
				{Source: "Internet Movie Database", Value: "8.5/10"},
				{Source: "Rotten Tomatoes", Value: "94%"},
				{Source: "Metacritic", Value: "81/100"},
			},
			want: "  - Internet Movie Database: 8.5/10\n  - Rotten Tomatoes: 94%\n  - Metacritic: 81/100\n",
		},
		{
			name:    "empty",
			ratings: nil,
			want:    "",
		},
		{
			name: "special characters",
			ratings: []models.MovieRating{
				{Source: "Test Source!@#", Value: "N/A"},
				{Source: "Unicode Test", Value: "9.5/10 ⭐"},
			},
			want: "  - Test Source!@#: N/A\n  - Unicode Test: 9.5/10 ⭐\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, nil).Ratings(tt.ratings)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestMovies(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, imagefallback.NewRegistry(imagefallback.WithFallbackURL("fb.jpg")))

	p.Movies("Results", []models.MovieListItem{
		{Title: "Rambo: First Blood Part II", Year: "1985", ImdbID: "tt0089880", Poster: "N/A"},
		{Title: "Rambo", Year: "2008", ImdbID: "tt0462499", Poster: "rambo.jpg", IsFavourite: true},
	})

	out := buf.String()
	assert.Contains(t, out, "=== Results (2) ===")
	assert.Contains(t, out, "1. Rambo: First Blood Part II (1985)\n")
	assert.Contains(t, out, "   Poster: fb.jpg\n")
	assert.Contains(t, out, "2. Rambo (2008) *\n")
	assert.Contains(t, out, "   Poster: rambo.jpg\n")
}

func TestMovies_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, nil).Movies("Favourites", nil)
	assert.Contains(t, buf.String(), "No movies.")
}

func TestDetail(t *testing.T) {
	var buf bytes.Buffer
	posters := imagefallback.NewRegistry()
	posters.ReportLoadFailure("tt0462499", "rambo.jpg")
	posters.ReportLoadFailure("tt0462499", "rambo.jpg")

	New(&buf, posters).Detail(&models.MovieDetails{
		Title:       "Rambo",
		Year:        "2008",
		ImdbID:      "tt0462499",
		Rated:       "R",
		DVD:         "N/A",
		Production:  "N/A",
		BoxOffice:   "N/A",
		Poster:      "rambo.jpg",
		Plot:        "In Thailand, John Rambo joins a group of mercenaries.",
		Ratings:     []models.MovieRating{{Source: "Metacritic", Value: "46/100"}},
		IsFavourite: true,
	})

	out := buf.String()
	assert.Contains(t, out, "=== Rambo (2008) * ===")
	assert.Contains(t, out, "Rated: R\n")
	assert.NotContains(t, out, "Box Office")
	assert.Contains(t, out, "Poster: "+EmojiPlaceholder)
	assert.Contains(t, out, "Ratings:\n  - Metacritic: 46/100\n")
	assert.True(t, strings.Index(out, "John Rambo") < strings.Index(out, "Ratings:"))
}

func TestDetail_Nil(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, nil).Detail(nil)
	assert.Equal(t, "No movie selected.\n", buf.String())
}

func TestErrors(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil)

	p.Errors(nil)
	assert.Empty(t, buf.String())

	p.Errors([]string{"Movie not found. Make sure you have the right spelling!"})
	assert.Contains(t, buf.String(), "  - Movie not found. Make sure you have the right spelling!\n")
}
