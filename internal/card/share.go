package card

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/google/uuid"
	"github.com/lyricard/lyricard/internal/provider"
)

// Share is the payload handed to a Sharer.
type Share struct {
	Title string
	Text  string
	Image []byte
}

// ShareFor builds the share payload for a rendered card.
func ShareFor(t provider.Track, png []byte) Share {
	return Share{
		Title: t.Name + " by " + t.ArtistLine(),
		Text:  "Check out these lyrics from " + t.Name + " by " + t.ArtistLine(),
		Image: png,
	}
}

// Sharer hands a card to the host platform.
type Sharer interface {
	Available() bool
	Share(ctx context.Context, s Share) error
}

// ClipboardSharer stores the PNG in a temp file and puts the title, text and
// path on the terminal clipboard using OSC 52.
type ClipboardSharer struct {
	Out     io.Writer
	TempDir string
	Tmux    bool
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// NewClipboardSharer writes escape sequences to out, wrapping them for tmux
// when running inside it.
func NewClipboardSharer(out io.Writer) *ClipboardSharer {
	return &ClipboardSharer{Out: out, Tmux: os.Getenv("TMUX") != ""}
}

func (c *ClipboardSharer) getenv(k string) string {
	if c.Getenv != nil {
		return c.Getenv(k)
	}
	return os.Getenv(k)
}

// Available reports whether the terminal can plausibly receive OSC 52.
func (c *ClipboardSharer) Available() bool {
	if c == nil || c.Out == nil {
		return false
	}
	return c.getenv("TERM") != "dumb"
}

// Share writes s.Image to a uniquely named file and copies a summary to the
// clipboard. The returned error wraps ErrShareUnavailable when sharing is
// not possible at all.
func (c *ClipboardSharer) Share(ctx context.Context, s Share) error {
	if !c.Available() {
		return ErrShareUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := c.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "lyricard-"+uuid.NewString()+".png")
	if err := os.WriteFile(path, s.Image, 0o644); err != nil {
		return fmt.Errorf("write share file: %w", err)
	}
	body := strings.Join([]string{s.Title, s.Text, path}, "\n")
	seq := osc52.New(body)
	if c.Tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(c.Out); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
