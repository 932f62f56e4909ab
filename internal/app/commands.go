package app

import (
	"context"
	"image"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lyricard/lyricard/internal/artwork"
	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/provider"
	"github.com/lyricard/lyricard/internal/wizard"
)

type outcomeMsg struct {
	outcome wizard.Outcome
}

type previewMsg struct {
	seq int
	out string
	err error
}

type artworkMsg struct {
	url string
	err error
}

type exportedMsg struct {
	path string
	err  error
}

type sharedMsg struct {
	err error
}

// clearErrorMsg clears the error it was scheduled for, unless a newer one
// replaced it.
type clearErrorMsg struct {
	seq int
}

const errorTimeout = 3 * time.Second

func clearErrorCmd(seq int) tea.Cmd {
	return tea.Tick(errorTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{seq: seq}
	})
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	return m.setErrorText(err.Error())
}

func (m Model) setErrorText(s string) (Model, tea.Cmd) {
	m.errorMsg = s
	m.errorSeq++
	return m, clearErrorCmd(m.errorSeq)
}

// runOp runs a wizard gateway call, cancelling whatever call it supersedes.
func (m Model) runOp(op wizard.Op) (Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	run := func() tea.Msg {
		return outcomeMsg{outcome: op(ctx)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// prefetchArtworkCmd warms the artwork cache while lyrics load.
func (m Model) prefetchArtworkCmd(t provider.Track) tea.Cmd {
	if m.art == nil || t.PrimaryImage() == "" {
		return nil
	}
	art, url := m.art, t.PrimaryImage()
	return func() tea.Msg {
		_, err := art.Fetch(context.Background(), url)
		return artworkMsg{url: url, err: err}
	}
}

// renderCard fetches artwork (falling back to the placeholder) and
// rasterizes spec.
func renderCard(ctx context.Context, art ArtworkFetcher, log *slog.Logger, spec card.Spec, scale int) (*image.RGBA, error) {
	var img image.Image
	if art != nil && spec.Track.PrimaryImage() != "" {
		fetched, err := art.Fetch(ctx, spec.Track.PrimaryImage())
		if err != nil {
			log.Warn("artwork unavailable, using placeholder", slog.String("track", spec.Track.Name), slog.Any("err", err))
		} else {
			img = fetched
		}
	}
	return card.Render(spec, img, scale)
}

func (m Model) previewSize() (int, int) {
	w, h := 36, 24
	if m.width > 0 {
		w = clamp(m.width/2-2, 12, 60)
	}
	if m.height > 0 {
		h = clamp(m.height-6, 6, 40)
	}
	return w, h
}

// requestPreview re-renders the terminal preview of the card.
func (m Model) requestPreview() (Model, tea.Cmd) {
	m.previewSeq++
	if m.protocol == artwork.ProtocolOff {
		m.preview = ""
		return m, nil
	}
	spec, err := m.machine.Card()
	if err != nil {
		return m, nil
	}
	seq, art, log, protocol := m.previewSeq, m.art, m.log, m.protocol
	w, h := m.previewSize()
	return m, func() tea.Msg {
		img, err := renderCard(context.Background(), art, log, spec, 1)
		if err != nil {
			return previewMsg{seq: seq, err: err}
		}
		out, err := artwork.Preview(img, w, h, protocol)
		return previewMsg{seq: seq, out: out, err: err}
	}
}

func (m Model) exportCard() (Model, tea.Cmd) {
	spec, err := m.machine.Card()
	if err != nil {
		return m.setError(err)
	}
	m.exporting = true
	m.status = "Saving card…"
	art, log, exporter, scale := m.art, m.log, m.exporter, m.cfg.Export.Scale
	save := func() tea.Msg {
		img, err := renderCard(context.Background(), art, log, spec, scale)
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := exporter.Save(spec.Track, img)
		return exportedMsg{path: path, err: err}
	}
	return m, tea.Batch(save, m.spinner.Tick)
}

func (m Model) shareCard() (Model, tea.Cmd) {
	spec, err := m.machine.Card()
	if err != nil {
		return m.setError(err)
	}
	m.sharing = true
	m.status = "Sharing card…"
	art, log, sharer, scale := m.art, m.log, m.sharer, m.cfg.Export.Scale
	share := func() tea.Msg {
		img, err := renderCard(context.Background(), art, log, spec, scale)
		if err != nil {
			return sharedMsg{err: err}
		}
		data, err := card.EncodePNG(img)
		if err != nil {
			return sharedMsg{err: err}
		}
		return sharedMsg{err: sharer.Share(context.Background(), card.ShareFor(spec.Track, data))}
	}
	return m, tea.Batch(share, m.spinner.Tick)
}
