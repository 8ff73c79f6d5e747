// Package view turns a navigation state into the declarative page the
// templates and the JSON API render.
package view

import (
	"github.com/sydlexius/spotilytics/internal/analytics"
	"github.com/sydlexius/spotilytics/internal/chart"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/table"
)

// Page is everything one screen shows.
type Page struct {
	View       session.View `json:"view"`
	SearchText string       `json:"search_text"`
	Results    []ResultItem `json:"results,omitempty"`
	Errors     []string     `json:"errors,omitempty"`
	Welcome    *Welcome     `json:"welcome,omitempty"`
	NotFound   string       `json:"not_found,omitempty"`
	Profile    *Profile     `json:"profile,omitempty"`
	Waiting    *Waiting     `json:"waiting,omitempty"`
	Comparison *Comparison  `json:"comparison,omitempty"`
}

// ResultItem is one pickable search result.
type ResultItem struct {
	ArtistID string `json:"artist_id"`
	Label    string `json:"label"`
}

// Welcome is the landing screen text.
type Welcome struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Steps    []string `json:"steps"`
}

// Card is an artist's summary block.
type Card struct {
	ArtistID   string `json:"artist_id"`
	Name       string `json:"name"`
	Followers  string `json:"followers"`
	Popularity int    `json:"popularity"`
	Genres     string `json:"genres"`
	ImageURL   string `json:"image_url"`
	HasImage   bool   `json:"has_image"`
}

// Profile is the single artist screen.
type Profile struct {
	Card        Card                   `json:"card"`
	TopTracks   []table.TrackRow       `json:"top_tracks"`
	AlbumStats  []analytics.AlbumStat  `json:"album_stats"`
	Discography []table.DiscographyRow `json:"discography"`
	Timeline    []analytics.YearCount  `json:"timeline"`
	Charts      []chart.Chart          `json:"charts"`
}

// Waiting is shown while a comparison needs its second artist.
type Waiting struct {
	Anchor      Card   `json:"anchor"`
	Instruction string `json:"instruction"`
}

// Comparison is the side-by-side screen.
type Comparison struct {
	First   Card          `json:"first"`
	Second  Card          `json:"second"`
	Metrics []MetricTile  `json:"metrics"`
	Charts  []chart.Chart `json:"charts"`
}

// MetricTile is one figure of the comparison header with its difference to
// the second artist.
type MetricTile struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
	// Inverse marks figures where a positive delta favours the first artist.
	Inverse bool `json:"inverse"`
}

// Welcome screen and empty-state texts.
const (
	welcomeTitle    = "Welcome to Spotilytics!"
	welcomeSubtitle = "Discover insights about your favorite artists"
	notFoundText    = "Artist not found."
	noGenresText    = "No genres available"
)

var welcomeSteps = []string{
	"Enter an artist name in the search box",
	"View detailed information about the artist",
	"Explore their top tracks and popularity stats",
}
