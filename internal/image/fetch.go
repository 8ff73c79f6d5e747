package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAllowedHosts lists the catalog's image CDN.
var DefaultAllowedHosts = []string{"i.scdn.co"}

// maxImageBytes caps a downloaded source image.
const maxImageBytes = 5 << 20

// maxRedirects matches the net/http default.
const maxRedirects = 10

// ErrHostNotAllowed is returned for image URLs outside the allow-list.
var ErrHostNotAllowed = errors.New("image host not allowed")

// Fetcher downloads source images from allow-listed hosts.
type Fetcher struct {
	client *http.Client
	hosts  map[string]struct{}
}

// NewFetcher creates a Fetcher. A nil client gets a 10 second timeout and
// empty hosts fall back to DefaultAllowedHosts.
func NewFetcher(client *http.Client, hosts []string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if len(hosts) == 0 {
		hosts = DefaultAllowedHosts
	}
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(h)] = struct{}{}
	}
	f := &Fetcher{hosts: set}

	// Every redirect hop must stay on the allow-list.
	c := *client
	c.CheckRedirect = f.checkRedirect
	f.client = &c
	return f
}

// Fetch downloads rawURL, refusing hosts outside the allow-list and bodies
// larger than 5 MiB.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.check(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req) //nolint:gosec // host checked against the allow-list
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

func (f *Fetcher) check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing image url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrHostNotAllowed, u.Scheme)
	}
	if _, ok := f.hosts[strings.ToLower(u.Hostname())]; !ok {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}
	return nil
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return f.check(req.URL.String())
}
