package view

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sydlexius/spotilytics/internal/catalog"
	"github.com/sydlexius/spotilytics/internal/session"
)

type stubSource struct {
	tracks      map[string][]catalog.Track
	discography map[string][]catalog.Track
	tracksErr   error
	discErr     error
}

func (s *stubSource) TopTracks(_ context.Context, artistID string) ([]catalog.Track, error) {
	if s.tracksErr != nil {
		return nil, s.tracksErr
	}
	return s.tracks[artistID], nil
}

func (s *stubSource) FullDiscography(_ context.Context, artistID string) ([]catalog.Track, error) {
	if s.discErr != nil {
		return nil, s.discErr
	}
	return s.discography[artistID], nil
}

var (
	radiohead = catalog.Artist{
		ID: "rh", Name: "Radiohead", Followers: 1234567, Popularity: 82,
		Genres: []string{"art rock", "alternative rock"},
		Image:  &catalog.Image{URL: "https://i.scdn.co/image/rh", Width: 640, Height: 640},
	}
	unknown = catalog.Artist{ID: "xx", Name: "Nobody Famous", Followers: 12}
)

func newTestBuilder(t *testing.T, src *stubSource) *Builder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBuilder(src, "/app", logger)
}

func sampleSource() *stubSource {
	okc := catalog.Album{ID: "okc", Name: "OK Computer", ReleaseDate: "1997-05-21"}
	return &stubSource{
		tracks: map[string][]catalog.Track{
			"rh": {
				{ID: "1", Name: "Karma Police", Popularity: 80, Album: okc},
				{ID: "2", Name: "No Surprises", Popularity: 90, Album: okc},
			},
			"xx": {{ID: "3", Name: "Hum", Popularity: 10, Album: catalog.Album{Name: "Demo", ReleaseDate: "2020"}}},
		},
		discography: map[string][]catalog.Track{
			"rh": {
				{ID: "1", Name: "Airbag", Album: okc},
				{ID: "4", Name: "Idioteque", Album: catalog.Album{Name: "Kid A", ReleaseDate: "2000"}},
			},
		},
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1.000",
		1234567: "1.234.567",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(2000); got != "+2.000" {
		t.Errorf("FormatDelta(2000) = %q", got)
	}
	if got := FormatDelta(-15); got != "-15" {
		t.Errorf("FormatDelta(-15) = %q", got)
	}
	if got := FormatDelta(0); got != "0" {
		t.Errorf("FormatDelta(0) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Radiohead", 20); got != "Radiohead" {
		t.Errorf("short text changed: %q", got)
	}
	if got := Truncate("Red Hot Chili Peppers", 20); got != "Red Hot Chili Pepper..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("Sigur Rósíííííííííííííí", 10); got != "Sigur Rósí..." {
		t.Errorf("multibyte Truncate = %q", got)
	}
}

func TestResultLabel(t *testing.T) {
	got := resultLabel("Red Hot Chili Peppers", []string{"alternative rock", "funk metal", "funk rock"})
	want := "Red Hot Chili Pepper... (alternative rock, funk me...)"
	if got != want {
		t.Errorf("resultLabel = %q, want %q", got, want)
	}
	if got := resultLabel("Björk", nil); got != "Björk (No genres)" {
		t.Errorf("resultLabel without genres = %q", got)
	}
}

func TestBuild_Welcome(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	p := b.Build(context.Background(), session.State{})
	if p.View != session.ViewWelcome || p.Welcome == nil {
		t.Fatalf("page = %+v", p)
	}
	if p.Welcome.Title != welcomeTitle || len(p.Welcome.Steps) != 3 {
		t.Errorf("welcome = %+v", p.Welcome)
	}
}

func TestBuild_NotFound(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	p := b.Build(context.Background(), session.State{SearchText: "zzz", LastSearch: "zzz"})
	if p.View != session.ViewArtistNotFound || p.NotFound != notFoundText {
		t.Errorf("page = %+v", p)
	}
	if len(p.Errors) != 0 {
		t.Errorf("errors = %v", p.Errors)
	}
}

func TestBuild_RemoteErrorHidesNotFoundText(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	p := b.Build(context.Background(), session.State{SearchText: "zzz", RemoteError: "The music catalog could not be reached. Try again."})
	if p.View != session.ViewArtistNotFound {
		t.Errorf("view = %q, want %q", p.View, session.ViewArtistNotFound)
	}
	if p.NotFound != "" {
		t.Errorf("not found text = %q, want none during an outage", p.NotFound)
	}
	if len(p.Errors) != 1 {
		t.Errorf("errors = %v", p.Errors)
	}
}

func TestBuild_SearchResults(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	s := session.State{SearchText: "radio", LastSearch: "radio", Results: []catalog.Artist{radiohead, unknown}}

	p := b.Build(context.Background(), s)
	if len(p.Results) != 2 {
		t.Fatalf("results = %+v", p.Results)
	}
	if p.Results[0].Label != "Radiohead (art rock, alternative rock)" {
		t.Errorf("label = %q", p.Results[0].Label)
	}
	if p.Results[1].Label != "Nobody Famous (No genres)" {
		t.Errorf("label = %q", p.Results[1].Label)
	}
}

func TestBuild_Profile(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	artist := radiohead
	s := session.State{SearchText: "radio", LastSearch: "radio", Results: []catalog.Artist{radiohead}, Selected: &artist}

	p := b.Build(context.Background(), s)
	if p.View != session.ViewArtistProfile || p.Profile == nil {
		t.Fatalf("page = %+v", p)
	}
	if len(p.Results) != 0 {
		t.Error("results shown alongside a selected artist")
	}

	card := p.Profile.Card
	if card.Followers != "1.234.567" || card.Genres != "art rock, alternative rock" || !card.HasImage {
		t.Errorf("card = %+v", card)
	}
	if !strings.HasPrefix(card.ImageURL, "/app/img/square?") || !strings.Contains(card.ImageURL, "size=250") {
		t.Errorf("ImageURL = %q", card.ImageURL)
	}

	if len(p.Profile.TopTracks) != 2 || len(p.Profile.Discography) != 2 {
		t.Errorf("tables: %d tracks, %d discography rows", len(p.Profile.TopTracks), len(p.Profile.Discography))
	}
	if len(p.Profile.AlbumStats) != 1 || p.Profile.AlbumStats[0].MeanPopularity != 85 {
		t.Errorf("album stats = %+v", p.Profile.AlbumStats)
	}
	if len(p.Profile.Timeline) != 2 {
		t.Errorf("timeline = %+v", p.Profile.Timeline)
	}
	for _, c := range p.Profile.Charts {
		if c.Empty() {
			t.Errorf("chart %s unexpectedly empty", c.ID)
		}
	}
	if len(p.Errors) != 0 {
		t.Errorf("errors = %v", p.Errors)
	}
}

func TestBuild_ProfilePlaceholders(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	artist := unknown
	p := b.Build(context.Background(), session.State{SearchText: "x", LastSearch: "x", Selected: &artist})

	card := p.Profile.Card
	if card.HasImage || card.ImageURL != "/app/static/img/placeholder.svg" {
		t.Errorf("image placeholder missing: %+v", card)
	}
	if card.Genres != noGenresText {
		t.Errorf("Genres = %q", card.Genres)
	}
	// No discography for this artist: timeline chart shows its empty state.
	if !p.Profile.Charts[2].Empty() || p.Profile.Charts[2].Message == "" {
		t.Errorf("timeline chart = %+v", p.Profile.Charts[2])
	}
}

func TestBuild_ProfileRemoteFailure(t *testing.T) {
	src := sampleSource()
	src.tracksErr = &catalog.ErrRemoteUnavailable{Op: "top_tracks", Cause: errors.New("timeout")}
	src.discErr = &catalog.ErrRemoteUnavailable{Op: "albums", Cause: errors.New("timeout")}
	b := newTestBuilder(t, src)
	artist := radiohead

	p := b.Build(context.Background(), session.State{SearchText: "r", LastSearch: "r", Selected: &artist})
	if p.Profile == nil {
		t.Fatal("profile missing")
	}
	if len(p.Errors) != 1 {
		t.Errorf("errors = %v, want one deduplicated message", p.Errors)
	}
	if len(p.Profile.TopTracks) != 0 || !p.Profile.Charts[0].Empty() {
		t.Error("expected empty tables and charts")
	}
}

func TestBuild_ProfileNotFoundIsSilent(t *testing.T) {
	src := sampleSource()
	src.tracksErr = &catalog.ErrNotFound{Kind: "artist", ID: "rh"}
	b := newTestBuilder(t, src)
	artist := radiohead

	p := b.Build(context.Background(), session.State{SearchText: "r", LastSearch: "r", Selected: &artist})
	if len(p.Errors) != 0 {
		t.Errorf("errors = %v", p.Errors)
	}
}

func TestBuild_Waiting(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	anchor := radiohead
	p := b.Build(context.Background(), session.State{SearchText: "r", LastSearch: "r", Comparing: true, Anchor: &anchor})

	if p.Waiting == nil || p.Waiting.Anchor.ArtistID != "rh" {
		t.Fatalf("waiting = %+v", p.Waiting)
	}
	if !strings.Contains(p.Waiting.Instruction, "Radiohead") {
		t.Errorf("instruction = %q", p.Waiting.Instruction)
	}
	if !strings.Contains(p.Waiting.Anchor.ImageURL, "size=200") {
		t.Errorf("ImageURL = %q", p.Waiting.Anchor.ImageURL)
	}
}

func TestBuild_Comparison(t *testing.T) {
	b := newTestBuilder(t, sampleSource())
	first, second := radiohead, unknown
	s := session.State{Comparing: true, Anchor: &first, Rival: &second}

	p := b.Build(context.Background(), s)
	if p.View != session.ViewCompare || p.Comparison == nil {
		t.Fatalf("page = %+v", p)
	}

	c := p.Comparison
	if c.First.Name != "Radiohead" || c.Second.Name != "Nobody Famous" {
		t.Errorf("cards = %+v / %+v", c.First, c.Second)
	}
	if c.Metrics[0].Delta != "-1.234.555" {
		t.Errorf("followers delta = %q", c.Metrics[0].Delta)
	}
	if c.Metrics[1].Value != "82/100" || c.Metrics[1].Delta != "-82" {
		t.Errorf("popularity tile = %+v", c.Metrics[1])
	}
	if c.Metrics[2].Value != "2" || c.Metrics[2].Delta != "-2" {
		t.Errorf("genres tile = %+v", c.Metrics[2])
	}
	if len(c.Charts) != 3 {
		t.Fatalf("charts = %d", len(c.Charts))
	}
	for _, ch := range c.Charts {
		if ch.Empty() {
			t.Errorf("chart %s empty", ch.ID)
		}
	}
}
