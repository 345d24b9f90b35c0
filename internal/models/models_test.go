package models

import (
	"encoding/json"
	"testing"
)

func TestBlob_TableName(t *testing.T) {
	if (Blob{}).TableName() != "blobs" {
		t.Errorf("expected table name blobs, got %s", (Blob{}).TableName())
	}
}

func TestMediaType_Constants(t *testing.T) {
	tests := []struct {
		mediaType MediaType
		expected  string
	}{
		{MediaTypeMovie, "movie"},
		{MediaTypeSeries, "series"},
		{MediaTypeEpisode, "episode"},
		{MediaTypeGame, "game"},
	}

	for _, tc := range tests {
		if string(tc.mediaType) != tc.expected {
			t.Errorf("expected %s, got %s", tc.expected, tc.mediaType)
		}
	}
}

func TestYear_Value(t *testing.T) {
	tests := []struct {
		year     Year
		expected int
	}{
		{"2008", 2008},
		{"2010–2015", 2010},
		{"2019–", 2019},
		{"N/A", 0},
		{"", 0},
		{"98", 0},
	}

	for _, tc := range tests {
		if got := tc.year.Value(); got != tc.expected {
			t.Errorf("Year(%q).Value() = %d, want %d", tc.year, got, tc.expected)
		}
	}
}

func TestYear_UnmarshalJSON(t *testing.T) {
	var item MovieListItem
	if err := json.Unmarshal([]byte(`{"Title":"Rambo","Year":2008,"imdbID":"tt0462499","Type":"movie"}`), &item); err != nil {
		t.Fatalf("numeric year: %v", err)
	}
	if item.Year != "2008" {
		t.Errorf("expected year 2008, got %q", item.Year)
	}

	if err := json.Unmarshal([]byte(`{"Year":"1985"}`), &item); err != nil {
		t.Fatalf("string year: %v", err)
	}
	if item.Year != "1985" {
		t.Errorf("expected year 1985, got %q", item.Year)
	}

	if err := json.Unmarshal([]byte(`{"Year":null}`), &item); err != nil {
		t.Fatalf("null year: %v", err)
	}
	if item.Year != "" {
		t.Errorf("expected empty year, got %q", item.Year)
	}

	if err := json.Unmarshal([]byte(`{"Year":true}`), &item); err == nil {
		t.Error("expected error for boolean year")
	}
}

func TestSortByYear_Numeric(t *testing.T) {
	items := []MovieListItem{
		{ImdbID: "a", Year: "2008"},
		{ImdbID: "b", Year: "N/A"},
		{ImdbID: "c", Year: "985"},
		{ImdbID: "d", Year: "1985"},
		{ImdbID: "e", Year: "2008"},
	}

	SortByYear(items)

	want := []string{"d", "a", "e", "c", "b"}
	for i, id := range want {
		if items[i].ImdbID != id {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, id, items[i].ImdbID, items)
		}
	}
}

func TestFilterMovies(t *testing.T) {
	items := []MovieListItem{
		{ImdbID: "tt0462499", Type: MediaTypeMovie},
		{ImdbID: "tt0222619", Type: MediaTypeSeries},
		{ImdbID: "tt0301766", Type: MediaTypeGame},
	}

	movies := FilterMovies(items)
	if len(movies) != 1 || movies[0].ImdbID != "tt0462499" {
		t.Errorf("expected only the movie, got %v", movies)
	}
	if len(FilterMovies(nil)) != 0 {
		t.Error("expected empty result for nil input")
	}
}

func TestIndexByID(t *testing.T) {
	items := []MovieListItem{{ImdbID: "x"}, {ImdbID: "y"}}
	if IndexByID(items, "y") != 1 {
		t.Error("expected index 1")
	}
	if IndexByID(items, "z") != -1 {
		t.Error("expected -1 for missing id")
	}
}

func TestMovieDetails_ListItem(t *testing.T) {
	d := MovieDetails{Title: "Rambo", Year: "2008", ImdbID: "tt0462499", Type: MediaTypeMovie, Poster: "p.jpg", IsFavourite: true}
	item := d.ListItem()
	if item.ImdbID != d.ImdbID || item.Year != d.Year || !item.IsFavourite {
		t.Errorf("unexpected list item %+v", item)
	}
}
