package chart

import (
	"fmt"

	"github.com/sydlexius/spotilytics/internal/analytics"
	"github.com/sydlexius/spotilytics/internal/table"
)

// Series colours for the first and second artist of a comparison.
const (
	firstColor       = "rgba(29, 185, 84, 0.7)"
	firstColorSolid  = "rgb(29, 185, 84)"
	secondColor      = "rgba(123, 97, 255, 0.7)"
	secondColorSolid = "rgb(123, 97, 255)"
)

// CompareTopTracks groups both artists' top tracks by rank.
func CompareTopTracks(a, b []table.TrackRow, nameA, nameB string) Chart {
	const title = "Top Tracks Comparison"
	n := max(len(a), len(b))
	if n == 0 {
		return empty(IDCompareTopTracks, title, "No track data available to compare.", 400)
	}

	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("#%d", i+1)
	}

	opts := newOptions(title, true)
	opts.Scales = map[string]Scale{
		"x": axis("Rank"),
		"y": axis("Popularity Score"),
	}

	return Chart{
		ID:     IDCompareTopTracks,
		Title:  title,
		Height: 400,
		Config: &Config{
			Type: "bar",
			Data: Data{
				Labels: labels,
				Datasets: []Dataset{
					{Label: nameA, Data: popularityByRank(a, n), BackgroundColor: firstColor},
					{Label: nameB, Data: popularityByRank(b, n), BackgroundColor: secondColor},
				},
			},
			Options: opts,
		},
	}
}

// popularityByRank pads missing ranks with zero so both series align.
func popularityByRank(rows []table.TrackRow, n int) []float64 {
	values := make([]float64, n)
	for i, r := range rows {
		values[i] = float64(r.Popularity)
	}
	return values
}

// CompareAlbums overlays both artists' album bubbles. Radii share one scale.
func CompareAlbums(a, b []analytics.AlbumStat, nameA, nameB string) Chart {
	const title = "Album Comparison"
	if len(a) == 0 && len(b) == 0 {
		return empty(IDCompareAlbums, title, "No album data available to compare.", 400)
	}

	peak := largestAlbum(a, b)
	return Chart{
		ID:     IDCompareAlbums,
		Title:  title,
		Height: 400,
		Config: &Config{
			Type: "bubble",
			Data: Data{
				Datasets: []Dataset{
					{Label: nameA, Data: bubbles(a, peak), BackgroundColor: firstColor},
					{Label: nameB, Data: bubbles(b, peak), BackgroundColor: secondColor},
				},
			},
			Options: bubbleOptions(title, true),
		},
	}
}

// Radar plots the three comparison metrics of both artists.
func Radar(a, b analytics.Metrics, nameA, nameB string) Chart {
	const title = "General Metrics"
	hundred := 100.0

	opts := newOptions(title, true)
	opts.Scales = map[string]Scale{
		"r": {BeginAtZero: true, SuggestedMax: &hundred},
	}

	return Chart{
		ID:     IDCompareRadar,
		Title:  title,
		Height: 400,
		Config: &Config{
			Type: "radar",
			Data: Data{
				Labels: []string{"Popularity", "Followers (normalized)", "Genre Score"},
				Datasets: []Dataset{
					{Label: nameA, Data: radarValues(a), BackgroundColor: "rgba(29, 185, 84, 0.2)", BorderColor: firstColorSolid, BorderWidth: 2},
					{Label: nameB, Data: radarValues(b), BackgroundColor: "rgba(123, 97, 255, 0.2)", BorderColor: secondColorSolid, BorderWidth: 2},
				},
			},
			Options: opts,
		},
	}
}

func radarValues(m analytics.Metrics) []float64 {
	return []float64{float64(m.Popularity), m.NormalizedFollowers, float64(m.GenreScore)}
}
