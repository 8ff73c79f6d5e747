package chart

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/sydlexius/spotilytics/internal/analytics"
	"github.com/sydlexius/spotilytics/internal/table"
)

// Chart ids, also used as canvas element ids.
const (
	IDTopTracks        = "top-tracks"
	IDTimeline         = "career-timeline"
	IDAlbumOverview    = "album-overview"
	IDCompareTopTracks = "compare-top-tracks"
	IDCompareAlbums    = "compare-albums"
	IDCompareRadar     = "compare-radar"
)

// maxBubbleRadius is the pixel radius of the album with the most tracks.
const maxBubbleRadius = 30

// TopTracks ranks tracks by popularity as horizontal bars, least popular
// first. Long lists get a taller canvas.
func TopTracks(rows []table.TrackRow) Chart {
	const title = "Popularity Tracks Ranking"
	height := 300
	if len(rows) > 10 {
		height = 500
	}
	if len(rows) == 0 {
		return empty(IDTopTracks, title, "No track data available to display.", height)
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b table.TrackRow) int { return cmp.Compare(a.Popularity, b.Popularity) })

	labels := make([]string, len(sorted))
	values := make([]float64, len(sorted))
	colors := make([]string, len(sorted))
	for i, r := range sorted {
		labels[i] = r.Track
		values[i] = float64(r.Popularity)
		colors[i] = viridis(float64(r.Popularity) / 100)
	}

	opts := newOptions(title, false)
	opts.IndexAxis = "y"
	opts.Scales = map[string]Scale{
		"x": axis("Popularity Score"),
	}

	return Chart{
		ID:     IDTopTracks,
		Title:  title,
		Height: height,
		Config: &Config{
			Type: "bar",
			Data: Data{
				Labels:   labels,
				Datasets: []Dataset{{Label: "Popularity", Data: values, BackgroundColor: colors}},
			},
			Options: opts,
		},
	}
}

// Timeline counts tracks per release year.
func Timeline(years []analytics.YearCount) Chart {
	const title = "Career Timeline"
	if len(years) == 0 {
		return empty(IDTimeline, title, "No valid release dates found.", 400)
	}

	peak := 0
	for _, y := range years {
		peak = max(peak, y.Tracks)
	}

	labels := make([]string, len(years))
	values := make([]float64, len(years))
	colors := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y.Year)
		values[i] = float64(y.Tracks)
		colors[i] = viridis(float64(y.Tracks) / float64(peak))
	}

	opts := newOptions(title, false)
	opts.Scales = map[string]Scale{
		"x": axis("Year"),
		"y": integerAxis("Number of Tracks"),
	}

	return Chart{
		ID:     IDTimeline,
		Title:  title,
		Height: 400,
		Config: &Config{
			Type: "bar",
			Data: Data{
				Labels:   labels,
				Datasets: []Dataset{{Label: "Tracks", Data: values, BackgroundColor: colors}},
			},
			Options: opts,
		},
	}
}

// AlbumOverview plots albums as bubbles: mean popularity across, track
// count up, radius proportional to track count.
func AlbumOverview(stats []analytics.AlbumStat) Chart {
	const title = "Album Overview"
	if len(stats) == 0 {
		return empty(IDAlbumOverview, title, "No track data available to display.", 400)
	}

	peak := largestAlbum(stats)
	points := bubbles(stats, peak)
	colors := make([]string, len(stats))
	for i, s := range stats {
		colors[i] = viridis(s.MeanPopularity / 100)
	}

	return Chart{
		ID:     IDAlbumOverview,
		Title:  title,
		Height: 400,
		Config: &Config{
			Type: "bubble",
			Data: Data{
				Datasets: []Dataset{{Label: "Albums", Data: points, BackgroundColor: colors}},
			},
			Options: bubbleOptions(title, false),
		},
	}
}

func largestAlbum(stats ...[]analytics.AlbumStat) int {
	peak := 0
	for _, set := range stats {
		for _, s := range set {
			peak = max(peak, s.Tracks)
		}
	}
	return peak
}

func bubbles(stats []analytics.AlbumStat, peak int) []Point {
	points := make([]Point, len(stats))
	for i, s := range stats {
		r := 0.0
		if peak > 0 {
			r = float64(s.Tracks) / float64(peak) * maxBubbleRadius
		}
		points[i] = Point{
			X:    s.MeanPopularity,
			Y:    float64(s.Tracks),
			R:    max(r, 3),
			Name: s.Album,
		}
	}
	return points
}

func bubbleOptions(title string, legend bool) Options {
	opts := newOptions(title, legend)
	opts.Scales = map[string]Scale{
		"x": axis("Average Popularity"),
		"y": integerAxis("Number of Tracks"),
	}
	return opts
}
