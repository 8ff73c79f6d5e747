package analytics

import "github.com/sydlexius/spotilytics/internal/catalog"

// Metrics are the three scalar axes of the comparison radar.
type Metrics struct {
	Popularity          int     `json:"popularity"`
	NormalizedFollowers float64 `json:"normalized_followers"`
	GenreScore          int     `json:"genre_score"`
}

// Deltas are the differences shown in the comparison header, second artist
// minus first.
type Deltas struct {
	Followers  int `json:"followers"`
	Popularity int `json:"popularity"`
	Genres     int `json:"genres"`
}

// genreWeight scales a genre count onto the radar's axis.
const genreWeight = 10

// ComparisonMetrics computes an artist's radar metrics. Followers are
// expressed as a percentage of maxFollowers, the larger follower count of
// the two artists under comparison; a zero maximum yields zero.
func ComparisonMetrics(a catalog.Artist, maxFollowers int) Metrics {
	m := Metrics{
		Popularity: a.Popularity,
		GenreScore: len(a.Genres) * genreWeight,
	}
	if maxFollowers > 0 {
		m.NormalizedFollowers = float64(a.Followers) / float64(maxFollowers) * 100
	}
	return m
}

// CompareMetrics computes radar metrics for both artists against their
// shared follower maximum.
func CompareMetrics(a, b catalog.Artist) (Metrics, Metrics) {
	maxFollowers := max(a.Followers, b.Followers)
	return ComparisonMetrics(a, maxFollowers), ComparisonMetrics(b, maxFollowers)
}

// MetricDeltas returns b's figures minus a's.
func MetricDeltas(a, b catalog.Artist) Deltas {
	return Deltas{
		Followers:  b.Followers - a.Followers,
		Popularity: b.Popularity - a.Popularity,
		Genres:     len(b.Genres) - len(a.Genres),
	}
}
