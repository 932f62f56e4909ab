// Package artwork fetches album artwork and previews images in the terminal.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrNotFound = errors.New("artwork not found")
	ErrInvalid  = errors.New("invalid artwork data")
)

const (
	DefaultCacheEntries = 32
	maxBodyBytes        = 10 << 20
)

type Config struct {
	// CacheEntries bounds the in-memory cache. Zero means DefaultCacheEntries.
	CacheEntries int
	UserAgent    string
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Fetcher downloads and decodes artwork, keeping recent images in memory for
// the lifetime of the process.
type Fetcher struct {
	client *http.Client
	cache  *lru.Cache[string, image.Image]
	ua     string
	log    *slog.Logger
}

func New(cfg Config) (*Fetcher, error) {
	n := cfg.CacheEntries
	if n <= 0 {
		n = DefaultCacheEntries
	}
	cache, err := lru.New[string, image.Image](n)
	if err != nil {
		return nil, fmt.Errorf("artwork cache: %w", err)
	}
	f := &Fetcher{client: cfg.HTTPClient, cache: cache, ua: cfg.UserAgent, log: cfg.Logger}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.log == nil {
		f.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f, nil
}

// Fetch returns the decoded image at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, ErrNotFound
	}
	if img, ok := f.cache.Get(url); ok {
		return img, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("artwork request: %w", err)
	}
	if f.ua != "" {
		req.Header.Set("User-Agent", f.ua)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("artwork fetch", slog.String("url", url), slog.Any("err", err))
		return nil, fmt.Errorf("artwork fetch: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("artwork fetch: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrInvalid
	}
	f.cache.Add(url, img)
	f.log.Debug("artwork cached", slog.String("url", url), slog.Int("entries", f.cache.Len()))
	return img, nil
}

// Cached reports how many images are held in memory.
func (f *Fetcher) Cached() int { return f.cache.Len() }
