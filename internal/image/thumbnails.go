package image

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sydlexius/spotilytics/internal/cache"
)

// ThumbnailTTL is how long a rendered thumbnail stays cached.
const ThumbnailTTL = 24 * time.Hour

// renderTimeout bounds one shared fetch and render. Requests waiting on it
// give up on their own context instead.
const renderTimeout = 30 * time.Second

// Thumbnail is a rendered square image.
type Thumbnail struct {
	Data   []byte
	Format string
}

// Thumbnails fetches, squares and caches artist images.
type Thumbnails struct {
	fetcher *Fetcher
	cache   *cache.Cache
	group   singleflight.Group
	logger  *slog.Logger
}

// NewThumbnails creates a Thumbnails service sharing the process cache.
func NewThumbnails(fetcher *Fetcher, c *cache.Cache, logger *slog.Logger) *Thumbnails {
	return &Thumbnails{
		fetcher: fetcher,
		cache:   c,
		logger:  logger.With(slog.String("component", "thumbnails")),
	}
}

// Square returns src rendered as a size x size thumbnail.
func (t *Thumbnails) Square(ctx context.Context, src string, size int) (Thumbnail, error) {
	key := cache.Key("square_image", src, strconv.Itoa(size))
	if v, ok := t.cache.Get(key, ThumbnailTTL); ok {
		if th, ok := v.(Thumbnail); ok {
			return th, nil
		}
	}

	ch := t.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renderTimeout)
		defer cancel()
		raw, err := t.fetcher.Fetch(fetchCtx, src)
		if err != nil {
			return nil, err
		}
		data, format, err := Square(bytes.NewReader(raw), size)
		if err != nil {
			return nil, fmt.Errorf("squaring %s: %w", src, err)
		}
		th := Thumbnail{Data: data, Format: format}
		t.cache.Set(key, th)
		t.logger.Debug("thumbnail rendered", slog.String("src", src), slog.Int("size", size), slog.Int("bytes", len(data)))
		return th, nil
	})

	select {
	case <-ctx.Done():
		return Thumbnail{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Thumbnail{}, res.Err
		}
		return res.Val.(Thumbnail), nil
	}
}
