package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sydlexius/spotilytics/internal/chart"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/table"
	"github.com/sydlexius/spotilytics/internal/view"
)

func render(t *testing.T, p view.Page) string {
	t.Helper()
	l := Layout{
		Assets: AssetPaths{
			CSS:     "/app/static/css/styles.css?v=abc",
			Charts:  "/app/static/js/charts.js?v=def",
			Favicon: "/app/static/img/favicon.svg?v=123",
			Icons: IconPaths{
				Favicon16:  "/app/static/img/favicon-16x16.png?v=1",
				Favicon32:  "/app/static/img/favicon-32x32.png?v=2",
				AppleTouch: "/app/static/img/apple-touch-icon.png?v=3",
				Large:      "/app/static/img/icon-512x512.png?v=4",
			},
			ChartJS: "https://cdn.example/chart.js",
		},
		BasePath:  "/app",
		CSRFToken: "tok123",
	}
	var buf bytes.Buffer
	if err := IndexPage(l, p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func TestIndexPage_Welcome(t *testing.T) {
	body := render(t, view.Page{
		View: session.ViewWelcome,
		Welcome: &view.Welcome{
			Title:    "Welcome to Spotilytics!",
			Subtitle: "Discover insights",
			Steps:    []string{"one", "two"},
		},
	})
	assertContains(t, body,
		"<!DOCTYPE html>",
		`href="/app/static/css/styles.css?v=abc"`,
		`src="https://cdn.example/chart.js"`,
		`action="/app/search"`,
		`name="csrf_token" value="tok123"`,
		"<li>one</li><li>two</li>",
		`<link rel="icon" type="image/svg+xml" href="/app/static/img/favicon.svg?v=123">`,
		`<link rel="icon" type="image/png" sizes="16x16" href="/app/static/img/favicon-16x16.png?v=1">`,
		`<link rel="icon" type="image/png" sizes="32x32" href="/app/static/img/favicon-32x32.png?v=2">`,
		`<link rel="apple-touch-icon" sizes="180x180" href="/app/static/img/apple-touch-icon.png?v=3">`,
		`sizes="512x512" href="/app/static/img/icon-512x512.png?v=4"`,
	)
}

func TestIndexPage_EscapesUserText(t *testing.T) {
	body := render(t, view.Page{
		View:       session.ViewArtistNotFound,
		SearchText: `"><script>alert(1)</script>`,
		NotFound:   "Artist not found.",
		Errors:     []string{"<b>busy</b>"},
	})
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("search text rendered unescaped")
	}
	assertContains(t, body, "&lt;b&gt;busy&lt;/b&gt;", "Artist not found.", `class="alert alert-error"`)
}

func TestIndexPage_ResultsList(t *testing.T) {
	body := render(t, view.Page{
		View:    session.ViewSearchResults,
		Results: []view.ResultItem{{ArtistID: "a1", Label: "Daft Punk (filter house)"}},
	})
	assertContains(t, body,
		`action="/app/pick"`,
		`name="artist_id" value="a1"`,
		"Daft Punk (filter house)",
	)
}

func TestIndexPage_Profile(t *testing.T) {
	top := chart.TopTracks([]table.TrackRow{{Number: 1, Track: "One More Time", Popularity: 80}})
	empty := chart.Timeline(nil)
	body := render(t, view.Page{
		View: session.ViewArtistProfile,
		Profile: &view.Profile{
			Card:      view.Card{ArtistID: "a1", Name: "Daft Punk", Followers: "9.000.000", Popularity: 80, Genres: "filter house", ImageURL: "/app/static/img/placeholder.svg"},
			TopTracks: []table.TrackRow{{Number: 1, Track: "One More Time", Album: "Discovery", ReleasedDate: "2001-03-12", Popularity: 80}},
			Charts:    []chart.Chart{top, empty},
		},
	})
	assertContains(t, body,
		"9.000.000",
		`class="placeholder"`,
		"One More Time",
		"data-chart=",
		`data-height="300"`,
		empty.Message,
		`action="/app/back"`,
		`action="/app/compare"`,
		`colspan="4"`,
	)
}

func TestIndexPage_Comparison(t *testing.T) {
	body := render(t, view.Page{
		View: session.ViewCompare,
		Comparison: &view.Comparison{
			First:  view.Card{Name: "A", HasImage: true, ImageURL: "/img/a"},
			Second: view.Card{Name: "B", HasImage: true, ImageURL: "/img/b"},
			Metrics: []view.MetricTile{
				{Label: "Followers", Value: "1.000", Delta: "+500", Inverse: true},
			},
		},
	})
	assertContains(t, body, `class="metric inverse"`, "+500", `action="/app/compare/exit"`)
}

func TestIndexPage_Waiting(t *testing.T) {
	body := render(t, view.Page{
		View:    session.ViewCompareWaiting,
		Waiting: &view.Waiting{Anchor: view.Card{Name: "A"}, Instruction: "Search for a second artist"},
	})
	assertContains(t, body, "Search for a second artist", `action="/app/compare/cancel"`)
}

func TestIndexPage_SanitizesImageURLs(t *testing.T) {
	body := render(t, view.Page{
		View: session.ViewArtistProfile,
		Profile: &view.Profile{
			Card: view.Card{ArtistID: "a1", Name: "X", HasImage: true, ImageURL: "javascript:alert(1)"},
		},
	})
	if strings.Contains(body, "javascript:") {
		t.Error("unsafe image url rendered")
	}
	assertContains(t, body, `data-artist="a1"`)
}

func TestIndexPage_NotFoundWithoutText(t *testing.T) {
	body := render(t, view.Page{
		View:   session.ViewArtistNotFound,
		Errors: []string{"The music catalog could not be reached. Try again."},
	})
	if strings.Contains(body, `class="not-found"`) {
		t.Error("not-found paragraph rendered without text")
	}
	assertContains(t, body, "could not be reached")
}
