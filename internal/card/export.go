package card

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lyricard/lyricard/internal/provider"
)

// ExportScale is the scale factor used for downloaded cards.
const ExportScale = 3

// Filename derives "<artist>-<track>-lyrics.png" for a track.
func Filename(t provider.Track) string {
	return slug(t.PrimaryArtist()) + "-" + slug(t.Name) + "-lyrics.png"
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

// EncodePNG serializes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Exporter writes rendered cards to a directory.
type Exporter struct {
	Dir string
}

// Save writes img under e.Dir using Filename(t) and returns the final path.
// The file is written to a temporary name first and renamed into place.
func (e Exporter) Save(t provider.Track, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".lyricard-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write card: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close card: %w", err)
	}
	path := filepath.Join(dir, Filename(t))
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename card: %w", err)
	}
	return path, nil
}
