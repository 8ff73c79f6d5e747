// Package table flattens catalog records into display rows.
package table

import "github.com/sydlexius/spotilytics/internal/catalog"

// TrackRow is one line of the top-tracks table.
type TrackRow struct {
	Number       int    `json:"number"`
	Track        string `json:"track"`
	Album        string `json:"album"`
	ReleasedDate string `json:"released_date"`
	Popularity   int    `json:"popularity"`
}

// DiscographyRow is one line of the discography table. Album-track listings
// carry no per-track popularity, so the column does not exist.
type DiscographyRow struct {
	Number       int    `json:"number"`
	Track        string `json:"track"`
	Album        string `json:"album"`
	ReleasedDate string `json:"released_date"`
}

// BuildTracks returns one row per track in input order, numbered from 1.
func BuildTracks(tracks []catalog.Track) []TrackRow {
	rows := make([]TrackRow, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, TrackRow{
			Number:       i + 1,
			Track:        t.Name,
			Album:        t.Album.Name,
			ReleasedDate: t.Album.ReleaseDate,
			Popularity:   t.Popularity,
		})
	}
	return rows
}

// BuildDiscography returns one row per album-stamped track in input order.
func BuildDiscography(tracks []catalog.Track) []DiscographyRow {
	rows := make([]DiscographyRow, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, DiscographyRow{
			Number:       i + 1,
			Track:        t.Name,
			Album:        t.Album.Name,
			ReleasedDate: t.Album.ReleaseDate,
		})
	}
	return rows
}
