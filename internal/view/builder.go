package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/spotilytics/internal/analytics"
	"github.com/sydlexius/spotilytics/internal/catalog"
	"github.com/sydlexius/spotilytics/internal/chart"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/table"
)

// Card image sizes in pixels.
const (
	ProfileImageSize = 250
	CompareImageSize = 200
)

// ValidImageSize reports whether n is one of the card image sizes pages link to.
func ValidImageSize(n int) bool {
	return n == ProfileImageSize || n == CompareImageSize
}

// Source provides the catalog data a page needs beyond the session state.
type Source interface {
	TopTracks(ctx context.Context, artistID string) ([]catalog.Track, error)
	FullDiscography(ctx context.Context, artistID string) ([]catalog.Track, error)
}

// Builder assembles pages.
type Builder struct {
	source   Source
	basePath string
	logger   *slog.Logger
}

// NewBuilder creates a Builder. basePath prefixes generated URLs.
func NewBuilder(source Source, basePath string, logger *slog.Logger) *Builder {
	return &Builder{
		source:   source,
		basePath: basePath,
		logger:   logger.With(slog.String("component", "view")),
	}
}

// Build renders s into a page. Catalog failures never abort the build; they
// are reported in Page.Errors and the affected sections stay empty.
func (b *Builder) Build(ctx context.Context, s session.State) Page {
	p := Page{
		View:       s.View(),
		SearchText: s.SearchText,
	}
	if s.RemoteError != "" {
		p.Errors = append(p.Errors, s.RemoteError)
	}
	if s.ShowsResults() {
		p.Results = resultItems(s.Results)
	}

	switch p.View {
	case session.ViewWelcome:
		p.Welcome = &Welcome{Title: welcomeTitle, Subtitle: welcomeSubtitle, Steps: welcomeSteps}
	case session.ViewArtistNotFound:
		// An outage is not an empty result.
		if s.RemoteError == "" {
			p.NotFound = notFoundText
		}
	case session.ViewArtistProfile:
		p.Profile = b.profile(ctx, *s.Selected, &p)
	case session.ViewCompareWaiting:
		p.Waiting = &Waiting{
			Anchor:      b.card(*s.Anchor, CompareImageSize),
			Instruction: fmt.Sprintf("Search and pick a second artist to compare with %s.", s.Anchor.Name),
		}
	case session.ViewCompare:
		p.Comparison = b.comparison(ctx, *s.Anchor, *s.Rival, &p)
	}
	return p
}

func resultItems(artists []catalog.Artist) []ResultItem {
	items := make([]ResultItem, len(artists))
	for i, a := range artists {
		items[i] = ResultItem{ArtistID: a.ID, Label: resultLabel(a.Name, a.Genres)}
	}
	return items
}

func (b *Builder) card(a catalog.Artist, size int) Card {
	c := Card{
		ArtistID:   a.ID,
		Name:       a.Name,
		Followers:  FormatNumber(a.Followers),
		Popularity: a.Popularity,
	}

	genres, err := a.GenreList()
	if err != nil {
		genres = noGenresText
	}
	c.Genres = genres

	if img, err := a.PrimaryImage(); err == nil {
		c.ImageURL = b.SquareURL(img.URL, size)
		c.HasImage = true
	} else {
		c.ImageURL = b.PlaceholderURL()
	}
	return c
}

// SquareURL returns the thumbnail proxy URL for src.
func (b *Builder) SquareURL(src string, size int) string {
	q := url.Values{}
	q.Set("src", src)
	q.Set("size", strconv.Itoa(size))
	return b.basePath + "/img/square?" + q.Encode()
}

// PlaceholderURL returns the image shown for artists without one.
func (b *Builder) PlaceholderURL() string {
	return b.basePath + "/static/img/placeholder.svg"
}

func (b *Builder) profile(ctx context.Context, a catalog.Artist, p *Page) *Profile {
	prof := &Profile{Card: b.card(a, ProfileImageSize)}

	loaded, errs := loadTracks(ctx,
		func(ctx context.Context) ([]catalog.Track, error) { return b.source.TopTracks(ctx, a.ID) },
		func(ctx context.Context) ([]catalog.Track, error) { return b.source.FullDiscography(ctx, a.ID) },
	)
	if errs[0] != nil {
		b.report(p, "loading top tracks", a, errs[0])
	}
	if errs[1] != nil {
		b.report(p, "loading discography", a, errs[1])
	}

	prof.TopTracks = table.BuildTracks(loaded[0])
	prof.AlbumStats = analytics.AlbumStats(prof.TopTracks)
	prof.Discography = table.BuildDiscography(loaded[1])
	prof.Timeline = analytics.YearlyTimeline(prof.Discography)

	prof.Charts = []chart.Chart{
		chart.TopTracks(prof.TopTracks),
		chart.AlbumOverview(prof.AlbumStats),
		chart.Timeline(prof.Timeline),
	}
	return prof
}

func (b *Builder) comparison(ctx context.Context, first, second catalog.Artist, p *Page) *Comparison {
	out := &Comparison{
		First:  b.card(first, CompareImageSize),
		Second: b.card(second, CompareImageSize),
	}

	deltas := analytics.MetricDeltas(first, second)
	out.Metrics = []MetricTile{
		{Label: "Followers", Value: FormatNumber(first.Followers), Delta: FormatDelta(deltas.Followers), Inverse: true},
		{Label: "Popularity", Value: fmt.Sprintf("%d/100", first.Popularity), Delta: FormatDelta(deltas.Popularity)},
		{Label: "Genres Count", Value: strconv.Itoa(len(first.Genres)), Delta: FormatDelta(deltas.Genres), Inverse: true},
	}

	loaded, errs := loadTracks(ctx,
		func(ctx context.Context) ([]catalog.Track, error) { return b.source.TopTracks(ctx, first.ID) },
		func(ctx context.Context) ([]catalog.Track, error) { return b.source.TopTracks(ctx, second.ID) },
	)
	if errs[0] != nil {
		b.report(p, "loading top tracks", first, errs[0])
	}
	if errs[1] != nil {
		b.report(p, "loading top tracks", second, errs[1])
	}

	firstRows, secondRows := table.BuildTracks(loaded[0]), table.BuildTracks(loaded[1])
	ma, mb := analytics.CompareMetrics(first, second)

	out.Charts = []chart.Chart{
		chart.CompareTopTracks(firstRows, secondRows, first.Name, second.Name),
		chart.CompareAlbums(analytics.AlbumStats(firstRows), analytics.AlbumStats(secondRows), first.Name, second.Name),
		chart.Radar(ma, mb, first.Name, second.Name),
	}
	return out
}

// loadTracks runs the lookups concurrently. A failed lookup leaves its slot
// empty and does not cancel the others.
func loadTracks(ctx context.Context, loads ...func(context.Context) ([]catalog.Track, error)) ([][]catalog.Track, []error) {
	results := make([][]catalog.Track, len(loads))
	errs := make([]error, len(loads))

	var g errgroup.Group
	for i, load := range loads {
		g.Go(func() error {
			results[i], errs[i] = load(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// report records a catalog failure on the page. A missing artist is an
// expected condition and only logged.
func (b *Builder) report(p *Page, op string, a catalog.Artist, err error) {
	var notFound *catalog.ErrNotFound
	if errors.As(err, &notFound) {
		b.logger.Info(op+": not found", slog.String("artist_id", a.ID))
		return
	}
	b.logger.Warn(op+" failed", slog.String("artist_id", a.ID), slog.Any("error", err))
	msg := fmt.Sprintf("Could not load data for %s. Try again later.", a.Name)
	if !slices.Contains(p.Errors, msg) {
		p.Errors = append(p.Errors, msg)
	}
}
