// Package spotify implements catalog.Client against the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/sydlexius/spotilytics/internal/catalog"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultMarket   = "US"

	// albumPageLimit is the largest page the albums endpoints serve. Only the
	// first page is fetched.
	albumPageLimit = 50

	albumGroups = "album,single,compilation"
	maxBodySize = 2 << 20
)

var _ catalog.Client = (*Adapter)(nil)

// Options configures an Adapter.
type Options struct {
	ClientID          string
	ClientSecret      string
	Market            string
	BaseURL           string
	TokenURL          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Adapter implements catalog.Client for Spotify. Requests are authenticated
// with the client-credentials grant and throttled by a shared limiter.
type Adapter struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
	market  string
}

// New creates a Spotify adapter. ctx scopes the token source and should live
// as long as the adapter.
func New(ctx context.Context, opts Options, logger *slog.Logger) *Adapter {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.Market == "" {
		opts.Market = defaultMarket
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	cc := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: opts.Timeout})
	client := cc.Client(ctx)
	client.Timeout = opts.Timeout

	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With(slog.String("component", "spotify")),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		market:  opts.Market,
	}
}

// SearchArtists searches Spotify for artists matching the given name.
func (a *Adapter) SearchArtists(ctx context.Context, query string, limit int) ([]catalog.Artist, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > catalog.SearchLimit {
		limit = catalog.SearchLimit
	}

	params := url.Values{
		"q":     {"artist:" + query},
		"type":  {"artist"},
		"limit": {strconv.Itoa(limit)},
	}

	var resp searchResponse
	if err := a.getJSON(ctx, "search", "/search", params, &resp); err != nil {
		return nil, err
	}

	artists := make([]catalog.Artist, 0, len(resp.Artists.Items))
	for _, item := range resp.Artists.Items {
		if item == nil || item.ID == "" {
			continue
		}
		artists = append(artists, convertArtist(item))
	}

	a.logger.Debug("artist search completed",
		slog.String("query", query),
		slog.Int("results", len(artists)))

	return artists, nil
}

// TopTracks fetches the artist's top tracks for the configured market.
func (a *Adapter) TopTracks(ctx context.Context, artistID string) ([]catalog.Track, error) {
	if artistID == "" {
		return nil, &catalog.ErrNotFound{Kind: "artist", ID: artistID}
	}

	params := url.Values{"market": {a.market}}
	path := "/artists/" + url.PathEscape(artistID) + "/top-tracks"

	var resp topTracksResponse
	if err := a.getJSON(ctx, "top tracks", path, params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]catalog.Track, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		if t == nil {
			continue
		}
		tracks = append(tracks, catalog.Track{
			ID:         t.ID,
			Name:       t.Name,
			Popularity: t.Popularity,
			Album:      convertAlbum(&t.Album),
		})
	}
	return tracks, nil
}

// ArtistAlbums lists the first page of the artist's albums, singles and
// compilations.
func (a *Adapter) ArtistAlbums(ctx context.Context, artistID string) ([]catalog.Album, error) {
	if artistID == "" {
		return nil, &catalog.ErrNotFound{Kind: "artist", ID: artistID}
	}

	params := url.Values{
		"include_groups": {albumGroups},
		"limit":          {strconv.Itoa(albumPageLimit)},
	}
	path := "/artists/" + url.PathEscape(artistID) + "/albums"

	var page albumsPage
	if err := a.getJSON(ctx, "artist albums", path, params, &page); err != nil {
		return nil, err
	}
	if page.Next != "" {
		a.logger.Debug("artist has more albums than one page",
			slog.String("artist_id", artistID),
			slog.Int("total", page.Total))
	}

	albums := make([]catalog.Album, 0, len(page.Items))
	for _, item := range page.Items {
		if item == nil || item.ID == "" {
			continue
		}
		albums = append(albums, convertAlbum(item))
	}
	return albums, nil
}

// AlbumTracks lists the album's tracks, each stamped with the album.
func (a *Adapter) AlbumTracks(ctx context.Context, album catalog.Album) ([]catalog.Track, error) {
	if album.ID == "" {
		return nil, &catalog.ErrNotFound{Kind: "album", ID: album.ID}
	}

	params := url.Values{"limit": {strconv.Itoa(albumPageLimit)}}
	path := "/albums/" + url.PathEscape(album.ID) + "/tracks"

	var page albumTracksPage
	if err := a.getJSON(ctx, "album tracks", path, params, &page); err != nil {
		return nil, err
	}

	tracks := make([]catalog.Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item == nil {
			continue
		}
		tracks = append(tracks, catalog.Track{
			ID:    item.ID,
			Name:  item.Name,
			Album: album,
		})
	}
	return tracks, nil
}

// getJSON waits for the limiter, issues a GET and decodes the body into v.
func (a *Adapter) getJSON(ctx context.Context, op, path string, params url.Values, v any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return &catalog.ErrRemoteUnavailable{Op: op, Cause: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := a.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := a.doRequest(ctx, op, reqURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", op, err)
	}
	return nil
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, op, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from adapter config and escaped inputs
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			a.logger.Error("token request rejected", slog.Int("status", retrieveErr.Response.StatusCode))
		}
		return nil, &catalog.ErrRemoteUnavailable{Op: op, Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return nil, &catalog.ErrNotFound{Kind: op, ID: reqURL}
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		a.logger.Warn("rate limited by server", slog.String("op", op), slog.Duration("retry_after", retryAfter))
		return nil, &catalog.ErrRemoteUnavailable{
			Op:         op,
			Cause:      fmt.Errorf("rate limited by server"),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &catalog.ErrRemoteUnavailable{
			Op:    op,
			Cause: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &catalog.ErrRemoteUnavailable{Op: op, Cause: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}

// parseRetryAfter reads a Retry-After header given in seconds. A missing or
// unparseable value yields zero.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func convertArtist(o *artistObject) catalog.Artist {
	a := catalog.Artist{
		ID:         o.ID,
		Name:       o.Name,
		Followers:  o.Followers.Total,
		Popularity: clampPopularity(o.Popularity),
	}
	if len(o.Genres) > 0 {
		a.Genres = append([]string(nil), o.Genres...)
	}
	if img, ok := largestImage(o.Images); ok {
		a.Image = &img
	}
	return a
}

func convertAlbum(o *albumObject) catalog.Album {
	album := catalog.Album{
		ID:                   o.ID,
		Name:                 o.Name,
		ReleaseDate:          o.ReleaseDate,
		ReleaseDatePrecision: o.ReleaseDatePrecision,
	}
	for _, img := range o.Images {
		if img.URL == "" {
			continue
		}
		album.Images = append(album.Images, catalog.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return album
}

// largestImage picks the widest image. Ties keep the earlier entry.
func largestImage(images []imageObject) (catalog.Image, bool) {
	var best catalog.Image
	found := false
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if !found || img.Width > best.Width {
			best = catalog.Image{URL: img.URL, Width: img.Width, Height: img.Height}
			found = true
		}
	}
	return best, found
}

func clampPopularity(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
