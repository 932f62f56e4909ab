// Package lrclib fetches synced lyrics from LRCLIB.
package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/lyricard/lyricard/internal/lrc"
	"github.com/lyricard/lyricard/internal/provider"
)

const (
	DefaultBaseURL   = "https://lrclib.net/api/get"
	DefaultUserAgent = "lyricard (https://github.com/lyricard/lyricard)"
)

type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	c := &Client{cfg: cfg, client: cfg.HTTPClient, log: cfg.Logger}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

func (c *Client) ID() string   { return "lrclib" }
func (c *Client) Name() string { return "LRCLIB" }

type getResponse struct {
	ID           int64  `json:"id"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// Fetch looks up the exact (artist, track, album) signature. A 404 means the
// catalog has no lyrics for the track and yields an empty slice with no error.
func (c *Client) Fetch(ctx context.Context, artist, track, album string) ([]lrc.Line, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", provider.ErrLyrics, err)
	}
	q := u.Query()
	q.Set("artist_name", artist)
	q.Set("track_name", track)
	q.Set("album_name", album)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrLyrics, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("lrclib fetch", slog.String("artist", artist), slog.String("track", track), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", provider.ErrLyrics, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.log.Debug("lrclib miss", slog.String("artist", artist), slog.String("track", track))
		return []lrc.Line{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Warn("lrclib status", slog.String("track", track), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", provider.ErrLyrics, resp.StatusCode)
	}

	var data getResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", provider.ErrLyrics, err)
	}
	if data.SyncedLyrics == "" {
		return []lrc.Line{}, nil
	}
	lines := lrc.Parse(data.SyncedLyrics)
	c.log.Debug("lrclib hit", slog.Int64("id", data.ID), slog.Int("lines", len(lines)))
	return lines, nil
}
