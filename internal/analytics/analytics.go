// Package analytics derives aggregate tables and comparison metrics from the
// flat track tables.
package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/sydlexius/spotilytics/internal/catalog"
	"github.com/sydlexius/spotilytics/internal/table"
)

// AlbumStat summarizes the tracks of one album.
type AlbumStat struct {
	Album          string  `json:"album"`
	Tracks         int     `json:"tracks"`
	MeanPopularity float64 `json:"mean_popularity"`
}

// YearCount is the number of tracks released in one year.
type YearCount struct {
	Year   int `json:"year"`
	Tracks int `json:"tracks"`
}

// releaseLayouts lists the date shapes the catalog is known to emit,
// most precise first.
var releaseLayouts = []string{"2006-01-02", "2006-01", "2006"}

// AlbumStats groups rows by album name, counting tracks and averaging their
// popularity. Output is ordered by album name.
func AlbumStats(rows []table.TrackRow) []AlbumStat {
	type acc struct {
		count int
		sum   int
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		a, ok := groups[r.Album]
		if !ok {
			a = &acc{}
			groups[r.Album] = a
		}
		a.count++
		a.sum += r.Popularity
	}

	stats := make([]AlbumStat, 0, len(groups))
	for name, a := range groups {
		stats = append(stats, AlbumStat{
			Album:          name,
			Tracks:         a.count,
			MeanPopularity: float64(a.sum) / float64(a.count),
		})
	}
	slices.SortFunc(stats, func(x, y AlbumStat) int { return cmp.Compare(x.Album, y.Album) })
	return stats
}

// YearlyTimeline counts tracks per release year. Rows whose date cannot be
// parsed are left out of the counts. Output is ordered by year.
func YearlyTimeline(rows []table.DiscographyRow) []YearCount {
	counts := make(map[int]int)
	for _, r := range rows {
		year, err := ParseReleaseYear(r.ReleasedDate)
		if err != nil {
			continue
		}
		counts[year]++
	}

	timeline := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		timeline = append(timeline, YearCount{Year: year, Tracks: n})
	}
	slices.SortFunc(timeline, func(x, y YearCount) int { return cmp.Compare(x.Year, y.Year) })
	return timeline
}

// ParseReleaseYear extracts the year from a release date given as
// YYYY-MM-DD, YYYY-MM or YYYY.
func ParseReleaseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range releaseLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < 1 {
			break
		}
		return t.Year(), nil
	}
	return 0, &catalog.ErrMalformedDate{Value: s}
}
