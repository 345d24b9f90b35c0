// Package render prints search state as plain text for the CLI
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/models"
)

// EmojiPlaceholder stands in for a poster that could not be loaded at all
const EmojiPlaceholder = "🎬"

// Printer writes text views to an output
type Printer struct {
	out     io.Writer
	posters *imagefallback.Registry
}

// New creates a Printer. posters may be nil, in which case poster URLs are
// printed through a default resolver.
func New(out io.Writer, posters *imagefallback.Registry) *Printer {
	if posters == nil {
		posters = imagefallback.NewRegistry()
	}
	return &Printer{out: out, posters: posters}
}

// Ratings prints one "Source: Value" line per rating
func (p *Printer) Ratings(ratings []models.MovieRating) {
	for _, r := range ratings {
		fmt.Fprintf(p.out, "  - %s: %s\n", r.Source, r.Value)
	}
}

// Movies prints a numbered list under title
func (p *Printer) Movies(title string, items []models.MovieListItem) {
	fmt.Fprintf(p.out, "\n=== %s (%d) ===\n", title, len(items))
	if len(items) == 0 {
		fmt.Fprintln(p.out, "No movies.")
		return
	}

	for i, item := range items {
		marker := ""
		if item.IsFavourite {
			marker = " *"
		}
		fmt.Fprintf(p.out, "\n%d. %s (%s)%s\n", i+1, item.Title, item.Year, marker)
		fmt.Fprintf(p.out, "   IMDb ID: %s\n", item.ImdbID)
		fmt.Fprintf(p.out, "   Poster: %s\n", p.poster(item.ImdbID, item.Poster))
	}
}

// Detail prints the full record of one movie
func (p *Printer) Detail(d *models.MovieDetails) {
	if d == nil {
		fmt.Fprintln(p.out, "No movie selected.")
		return
	}

	heading := fmt.Sprintf("%s (%s)", d.Title, d.Year)
	if d.IsFavourite {
		heading += " *"
	}
	fmt.Fprintf(p.out, "\n=== %s ===\n", heading)

	fields := []struct {
		label string
		value string
	}{
		{"IMDb ID", d.ImdbID},
		{"Rated", d.Rated},
		{"Released", d.Released},
		{"Runtime", d.Runtime},
		{"Genre", d.Genre},
		{"Director", d.Director},
		{"Writer", d.Writer},
		{"Actors", d.Actors},
		{"Language", d.Language},
		{"Country", d.Country},
		{"Awards", d.Awards},
		{"Box Office", d.BoxOffice},
	}
	for _, f := range fields {
		if f.value == "" || f.value == models.NotAvailable {
			continue
		}
		fmt.Fprintf(p.out, "%s: %s\n", f.label, f.value)
	}
	fmt.Fprintf(p.out, "Poster: %s\n", p.poster(d.ImdbID, d.Poster))

	if plot := strings.TrimSpace(d.Plot); plot != "" && plot != models.NotAvailable {
		fmt.Fprintf(p.out, "\n%s\n", plot)
	}

	if len(d.Ratings) > 0 {
		fmt.Fprintln(p.out, "\nRatings:")
		p.Ratings(d.Ratings)
	}
}

// Errors prints the error log, if any
func (p *Printer) Errors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(p.out, "\n=== Errors ===")
	for _, e := range errs {
		fmt.Fprintf(p.out, "  - %s\n", e)
	}
}

func (p *Printer) poster(id, url string) string {
	if resolved := p.posters.URL(id, url); resolved != "" {
		return resolved
	}
	return EmojiPlaceholder
}
