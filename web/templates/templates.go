// Package templates renders pages as templ components.
//
// The .templ files are the source; regenerate the _templ.go files with
// `templ generate` after editing them.
package templates

import (
	"strconv"

	"github.com/sydlexius/spotilytics/internal/analytics"
)

// AssetPaths holds cache-busted static asset URLs.
type AssetPaths struct {
	CSS     string
	Charts  string
	Favicon string
	Icons   IconPaths
	// ChartJS is the Chart.js library script, usually a CDN URL.
	ChartJS string
}

// IconPaths holds the raster icons rendered by tools/genicons.
type IconPaths struct {
	Favicon16  string
	Favicon32  string
	AppleTouch string
	Large      string
}

// Layout carries the request-scoped values every page needs.
type Layout struct {
	Assets    AssetPaths
	BasePath  string
	CSRFToken string
}

func (l Layout) action(path string) string {
	return l.BasePath + path
}

// Column headers of the page tables.
var (
	trackColumns       = []string{"#", "Track", "Album", "Released Date", "Popularity"}
	discographyColumns = []string{"#", "Track", "Album", "Released Date"}
	albumStatColumns   = []string{"Album", "Tracks", "Mean popularity"}
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func meanPopularity(s analytics.AlbumStat) string {
	return strconv.FormatFloat(s.MeanPopularity, 'f', 1, 64)
}
