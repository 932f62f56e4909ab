// Package tags derives a search query from a local audio file.
package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

var ErrNoQuery = errors.New("tags: no artist or title found")

// QueryFromFile returns "<artist> <title>" from the file's tags. Files
// without readable tags fall back to the file name.
func QueryFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var artist, title string
	if meta, err := tag.ReadFrom(f); err == nil {
		artist = strings.TrimSpace(meta.Artist())
		if artist == "" {
			artist = strings.TrimSpace(meta.AlbumArtist())
		}
		title = strings.TrimSpace(meta.Title())
	}
	if title == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		title = strings.Join(strings.Fields(strings.ReplaceAll(stem, "_", " ")), " ")
	}
	q := strings.TrimSpace(artist + " " + title)
	if q == "" {
		return "", ErrNoQuery
	}
	return q, nil
}
