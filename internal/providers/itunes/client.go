// Package itunes implements track search against the public iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lyricard/lyricard/internal/provider"
)

const (
	DefaultBaseURL = "https://itunes.apple.com/search"
	DefaultEntity  = "song"
	DefaultLimit   = 12
)

type Config struct {
	BaseURL    string
	Entity     string
	Limit      int
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
	if cfg.Entity == "" {
		cfg.Entity = DefaultEntity
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	c := &Client{cfg: cfg, client: cfg.HTTPClient, log: cfg.Logger}
	if c.client == nil {
		// No client timeout: a search is fire-once and the caller's context decides.
		c.client = &http.Client{}
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

func (c *Client) ID() string   { return "itunes" }
func (c *Client) Name() string { return "iTunes Search" }

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []result `json:"results"`
}

type result struct {
	WrapperType    string `json:"wrapperType"`
	Kind           string `json:"kind"`
	TrackID        int64  `json:"trackId"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

// Search returns playable songs matching query, normalized to provider.Track.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Track, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", provider.ErrSearch, err)
	}
	q := u.Query()
	q.Set("term", query)
	q.Set("entity", c.cfg.Entity)
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrSearch, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("itunes search", slog.String("query", query), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", provider.ErrSearch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("itunes search status", slog.String("query", query), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", provider.ErrSearch, resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", provider.ErrSearch, err)
	}
	tracks := normalize(data.Results)
	c.log.Debug("itunes search", slog.String("query", query), slog.Int("results", data.ResultCount), slog.Int("tracks", len(tracks)))
	return tracks, nil
}

func normalize(results []result) []provider.Track {
	tracks := make([]provider.Track, 0, len(results))
	for _, r := range results {
		if r.WrapperType != "track" || r.TrackName == "" {
			continue
		}
		if r.Kind != "" && r.Kind != "song" {
			continue
		}
		var images []string
		if r.ArtworkURL100 != "" {
			images = []string{UpgradeArtwork(r.ArtworkURL100)}
		}
		tracks = append(tracks, provider.Track{
			ID:      strconv.FormatInt(r.TrackID, 10),
			Name:    r.TrackName,
			Artists: []string{r.ArtistName},
			Album:   r.CollectionName,
			Images:  images,
		})
	}
	return tracks
}

// UpgradeArtwork swaps the 100x100 rendition token for the 600x600 one the
// artwork CDN also serves.
func UpgradeArtwork(ref string) string {
	return strings.Replace(ref, "100x100", "600x600", 1)
}
