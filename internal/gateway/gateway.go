// Package gateway wraps a catalog.Client behind a cached, deduplicating
// interface. Results are memoized by operation name and arguments in a
// process-wide TTL cache; concurrent identical lookups share one remote call.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sydlexius/spotilytics/internal/cache"
	"github.com/sydlexius/spotilytics/internal/catalog"
)

// Cache operation names.
const (
	OpSearch          = "search_artists"
	OpTopTracks       = "top_tracks"
	OpArtistAlbums    = "artist_albums"
	OpAlbumTracks     = "album_tracks"
	OpFullDiscography = "full_discography"
)

// LoadTimeout bounds one shared remote load, independent of the callers
// waiting on it.
const LoadTimeout = 2 * time.Minute

// TTLs holds the time-to-live applied to each class of lookup.
type TTLs struct {
	// Search covers artist search and top tracks.
	Search time.Duration
	// Discography covers album listings, album tracks and full discography.
	Discography time.Duration
}

// DefaultTTLs returns one hour for search lookups and a day for discography
// lookups, which change rarely and cost one request per album.
func DefaultTTLs() TTLs {
	return TTLs{
		Search:      time.Hour,
		Discography: 24 * time.Hour,
	}
}

// Gateway is the cached entry point to the remote catalog.
type Gateway struct {
	client catalog.Client
	cache  *cache.Cache
	group  singleflight.Group
	ttls   TTLs
	logger *slog.Logger

	loadTimeout time.Duration
}

// New creates a Gateway. Zero TTLs fall back to DefaultTTLs.
func New(client catalog.Client, c *cache.Cache, ttls TTLs, logger *slog.Logger) *Gateway {
	def := DefaultTTLs()
	if ttls.Search <= 0 {
		ttls.Search = def.Search
	}
	if ttls.Discography <= 0 {
		ttls.Discography = def.Discography
	}
	return &Gateway{
		client: client,
		cache:  c,
		ttls:   ttls,
		logger: logger.With(slog.String("component", "gateway")),

		loadTimeout: LoadTimeout,
	}
}

// SearchArtists returns up to catalog.SearchLimit artists matching query.
func (g *Gateway) SearchArtists(ctx context.Context, query string) ([]catalog.Artist, error) {
	return memoize(ctx, g, OpSearch, g.ttls.Search, []string{query}, func(ctx context.Context) ([]catalog.Artist, error) {
		return g.client.SearchArtists(ctx, query, catalog.SearchLimit)
	})
}

// TopTracks returns the artist's top tracks.
func (g *Gateway) TopTracks(ctx context.Context, artistID string) ([]catalog.Track, error) {
	return memoize(ctx, g, OpTopTracks, g.ttls.Search, []string{artistID}, func(ctx context.Context) ([]catalog.Track, error) {
		return g.client.TopTracks(ctx, artistID)
	})
}

// ArtistAlbums returns the first page of the artist's albums.
func (g *Gateway) ArtistAlbums(ctx context.Context, artistID string) ([]catalog.Album, error) {
	return memoize(ctx, g, OpArtistAlbums, g.ttls.Discography, []string{artistID}, func(ctx context.Context) ([]catalog.Album, error) {
		return g.client.ArtistAlbums(ctx, artistID)
	})
}

// AlbumTracks returns the album's tracks stamped with album.
func (g *Gateway) AlbumTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	return memoize(ctx, g, OpAlbumTracks, g.ttls.Discography, []string{album.ID}, func(ctx context.Context) ([]catalog.Track, error) {
		return g.client.AlbumTracks(ctx, album)
	})
}

// FullDiscography assembles every track of the artist's albums, singles and
// compilations. Albums are visited in listing order and tracks keep their
// album order. One failing album fails the whole assembly.
func (g *Gateway) FullDiscography(ctx context.Context, artistID string) ([]catalog.Track, error) {
	return memoize(ctx, g, OpFullDiscography, g.ttls.Discography, []string{artistID}, func(ctx context.Context) ([]catalog.Track, error) {
		albums, err := g.ArtistAlbums(ctx, artistID)
		if err != nil {
			return nil, fmt.Errorf("listing albums: %w", err)
		}

		tracks := make([]catalog.Track, 0, len(albums)*8)
		for _, album := range albums {
			albumTracks, err := g.AlbumTracks(ctx, album)
			if err != nil {
				return nil, fmt.Errorf("listing tracks of album %s: %w", album.ID, err)
			}
			tracks = append(tracks, albumTracks...)
		}

		g.logger.Debug("discography assembled",
			slog.String("artist_id", artistID),
			slog.Int("albums", len(albums)),
			slog.Int("tracks", len(tracks)))

		return tracks, nil
	})
}

// Stats exposes the underlying cache counters.
func (g *Gateway) Stats() cache.Stats {
	return g.cache.Stats()
}

// memoize serves op(args) from the cache when fresh, otherwise loads it once
// for all concurrent callers and stores successful results. Errors are never
// cached. The shared load runs detached from any one caller's context, so a
// caller that goes away only abandons its own wait.
func memoize[T any](ctx context.Context, g *Gateway, op string, ttl time.Duration, args []string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	key := cache.Key(op, args...)
	if v, ok := g.cache.Get(key, ttl); ok {
		if typed, ok := v.(T); ok {
			g.logger.Debug("cache hit", slog.String("op", op))
			return typed, nil
		}
	}

	ch := g.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.loadTimeout)
		defer cancel()
		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		g.cache.Set(key, val)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		g.logger.Debug("cache miss", slog.String("op", op), slog.Bool("shared", res.Shared))
		return res.Val.(T), nil
	}
}
