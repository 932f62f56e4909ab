package provider

import (
	"context"
	"strings"

	"github.com/lyricard/lyricard/internal/lrc"
)

// TrackSearcher queries a song catalog.
type TrackSearcher interface {
	ID() string
	Search(ctx context.Context, query string) ([]Track, error)
}

// LyricsFetcher looks up synced lyrics for a track. A catalog miss is an
// empty result, not an error.
type LyricsFetcher interface {
	ID() string
	Fetch(ctx context.Context, artist, track, album string) ([]lrc.Line, error)
}

// Track is the catalog-neutral song shape used by the wizard.
type Track struct {
	ID      string
	Name    string
	Artists []string
	Album   string
	Images  []string
}

// PrimaryArtist returns the first credited artist.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// PrimaryImage returns the first artwork URL, or "" when there is none.
func (t Track) PrimaryImage() string {
	if len(t.Images) == 0 {
		return ""
	}
	return t.Images[0]
}

// ArtistLine joins all credited artists for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}
