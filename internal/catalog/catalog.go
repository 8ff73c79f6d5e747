// Package catalog defines the artist, album and track records read from the
// remote music catalog and the interface adapters implement to serve them.
package catalog

import (
	"context"
	"strings"
)

// SearchLimit is the maximum number of artists a name search returns.
const SearchLimit = 10

// Image is a single image reference served by the catalog.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Artist is a performer as reported by the catalog. Records are immutable
// once fetched.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres,omitempty"`
	Followers  int      `json:"followers"`
	Popularity int      `json:"popularity"`
	Image      *Image   `json:"image,omitempty"`
}

// PrimaryImage returns the artist's representative image, or ErrMissingField
// when the catalog has none.
func (a Artist) PrimaryImage() (Image, error) {
	if a.Image == nil || a.Image.URL == "" {
		return Image{}, &ErrMissingField{Record: "artist", ID: a.ID, Field: "images"}
	}
	return *a.Image, nil
}

// GenreList joins the artist's genres with ", ". It returns ErrMissingField
// when the artist has no genre labels.
func (a Artist) GenreList() (string, error) {
	if len(a.Genres) == 0 {
		return "", &ErrMissingField{Record: "artist", ID: a.ID, Field: "genres"}
	}
	return strings.Join(a.Genres, ", "), nil
}

// Album is a release grouping one or more tracks. ReleaseDate is kept as the
// catalog reports it and may be year-only.
type Album struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	ReleaseDate          string  `json:"release_date"`
	ReleaseDatePrecision string  `json:"release_date_precision,omitempty"`
	Images               []Image `json:"images,omitempty"`
}

// Track is a single recording. Tracks assembled from album listings carry
// the parent album stamped into Album and have no popularity figure.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Album      Album  `json:"album"`
}

// Client is implemented by catalog adapters.
type Client interface {
	// SearchArtists returns up to limit artists ranked by the catalog.
	// An empty slice is a valid result.
	SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error)

	// TopTracks returns the catalog's most popular tracks for an artist.
	TopTracks(ctx context.Context, artistID string) ([]Track, error)

	// ArtistAlbums lists albums, singles and compilations for an artist,
	// limited to the first page the catalog serves.
	ArtistAlbums(ctx context.Context, artistID string) ([]Album, error)

	// AlbumTracks lists the tracks of an album, each stamped with album.
	AlbumTracks(ctx context.Context, album Album) ([]Track, error)
}
