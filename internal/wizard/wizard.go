// Package wizard holds the four-step flow from a search query to a card:
// search, pick a song, pick lyric lines, customize.
//
// A Machine is owned by a single goroutine. Network calls are returned as
// Ops for the caller to run; their Outcomes are fed back through Apply.
package wizard

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/lrc"
	"github.com/lyricard/lyricard/internal/provider"
)

type Step int

const (
	StepSearch Step = iota
	StepSelectSong
	StepSelectLyrics
	StepCustomize
)

// Steps lists every step in order.
var Steps = []Step{StepSearch, StepSelectSong, StepSelectLyrics, StepCustomize}

func (s Step) String() string {
	switch s {
	case StepSearch:
		return "Search"
	case StepSelectSong:
		return "Select Song"
	case StepSelectLyrics:
		return "Select Lyrics"
	case StepCustomize:
		return "Customize"
	default:
		return "Unknown"
	}
}

// State is a snapshot of the wizard.
//
// Lyrics is nil until a lyrics lookup has completed for the selected track
// and empty when the lookup found nothing or failed.
type State struct {
	Step          Step
	Query         string
	Results       []provider.Track
	Selected      *provider.Track
	Lyrics        []lrc.Line
	SelectedLines []string
	Customization card.Options
	Loading       bool
	Err           string
}

// LyricsFetched reports whether a lyrics lookup has finished.
func (s State) LyricsFetched() bool {
	return s.Lyrics != nil && !s.Loading
}

// IsSelected reports whether text is among the chosen lines.
func (s State) IsSelected(text string) bool {
	return slices.Contains(s.SelectedLines, text)
}

type Config struct {
	Searcher provider.TrackSearcher
	Lyrics   provider.LyricsFetcher
	// Customization seeds the customize step. Zero means card.DefaultOptions.
	Customization card.Options
	Logger        *slog.Logger
}

type Machine struct {
	searcher provider.TrackSearcher
	lyrics   provider.LyricsFetcher
	log      *slog.Logger
	state    State
	gen      uint64
}

func New(cfg Config) *Machine {
	opts := cfg.Customization
	if opts.Validate() != nil {
		opts = card.DefaultOptions()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{
		searcher: cfg.Searcher,
		lyrics:   cfg.Lyrics,
		log:      log,
		state:    State{Step: StepSearch, Customization: opts},
	}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.Results = slices.Clone(s.Results)
	s.Lyrics = slices.Clone(s.Lyrics)
	s.SelectedLines = slices.Clone(s.SelectedLines)
	if s.Selected != nil {
		t := *s.Selected
		s.Selected = &t
	}
	return s
}

func (m *Machine) Step() Step { return m.state.Step }

// Submit starts a search for query. It returns ErrBlankQuery without
// touching the state when query is empty after trimming.
func (m *Machine) Submit(query string) (Op, error) {
	if m.state.Step != StepSearch {
		return nil, ErrWrongStep
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrBlankQuery
	}
	m.gen++
	m.state.Query = query
	m.state.Loading = true
	m.state.Err = ""
	m.log.Debug("search submitted", slog.String("query", q), slog.Uint64("gen", m.gen))

	gen, searcher := m.gen, m.searcher
	return func(ctx context.Context) Outcome {
		tracks, err := searcher.Search(ctx, q)
		return SearchOutcome{Gen: gen, Tracks: tracks, Err: err}
	}, nil
}

// SelectTrack picks a search result, moves to the lyrics step immediately
// and returns the lyrics lookup.
func (m *Machine) SelectTrack(t provider.Track) (Op, error) {
	if m.state.Step != StepSelectSong {
		return nil, ErrWrongStep
	}
	m.gen++
	m.state.Selected = &t
	m.state.Lyrics = nil
	m.state.SelectedLines = nil
	m.state.Loading = true
	m.state.Err = ""
	m.state.Step = StepSelectLyrics
	m.log.Debug("track selected", slog.String("track", t.Name), slog.String("artist", t.PrimaryArtist()), slog.Uint64("gen", m.gen))

	gen, fetcher := m.gen, m.lyrics
	return func(ctx context.Context) Outcome {
		lines, err := fetcher.Fetch(ctx, t.PrimaryArtist(), t.Name, t.Album)
		return LyricsOutcome{Gen: gen, Lines: lines, Err: err}
	}, nil
}

// Apply folds a finished Op into the state. Outcomes issued before the most
// recent Submit, SelectTrack or Back are discarded and Apply returns false.
func (m *Machine) Apply(o Outcome) bool {
	if o == nil || o.generation() != m.gen {
		if o != nil {
			m.log.Debug("stale outcome discarded", slog.Uint64("gen", o.generation()), slog.Uint64("current", m.gen))
		}
		return false
	}
	switch o := o.(type) {
	case SearchOutcome:
		m.applySearch(o)
	case LyricsOutcome:
		m.applyLyrics(o)
	default:
		return false
	}
	return true
}

func (m *Machine) applySearch(o SearchOutcome) {
	m.state.Loading = false
	if o.Err != nil {
		m.log.Error("search failed", slog.String("query", m.state.Query), slog.Any("err", o.Err))
		m.state.Results = nil
		m.state.Err = MsgSearchFailed
		return
	}
	m.state.Results = o.Tracks
	m.state.Err = ""
	m.state.Step = StepSelectSong
	m.log.Debug("search done", slog.Int("results", len(o.Tracks)))
}

func (m *Machine) applyLyrics(o LyricsOutcome) {
	m.state.Loading = false
	switch {
	case o.Err != nil:
		m.log.Error("lyrics fetch failed", slog.Any("err", o.Err))
		m.state.Lyrics = []lrc.Line{}
		m.state.Err = MsgLyricsFailed
	case len(o.Lines) == 0:
		m.state.Lyrics = []lrc.Line{}
		m.state.Err = MsgLyricsNotFound
	default:
		m.state.Lyrics = o.Lines
		m.log.Debug("lyrics loaded", slog.Int("lines", len(o.Lines)))
	}
}

// ToggleLine adds text to the selection, or removes it when already chosen.
func (m *Machine) ToggleLine(text string) error {
	if m.state.Step != StepSelectLyrics {
		return ErrWrongStep
	}
	if !m.state.LyricsFetched() {
		return ErrLyricsPending
	}
	if !slices.ContainsFunc(m.state.Lyrics, func(l lrc.Line) bool { return l.Text == text }) {
		return ErrUnknownLine
	}
	if i := slices.Index(m.state.SelectedLines, text); i >= 0 {
		m.state.SelectedLines = slices.Delete(m.state.SelectedLines, i, i+1)
		return nil
	}
	m.state.SelectedLines = append(m.state.SelectedLines, text)
	return nil
}

// Continue moves from lyric selection to customization.
func (m *Machine) Continue() error {
	if m.state.Step != StepSelectLyrics {
		return ErrWrongStep
	}
	if len(m.state.SelectedLines) == 0 {
		return ErrNothingSelected
	}
	m.state.Step = StepCustomize
	return nil
}

// Back returns to the previous step and invalidates any in-flight Op.
// At StepSearch it only clears the error.
func (m *Machine) Back() {
	if m.state.Step == StepSearch {
		m.state.Err = ""
		return
	}
	m.gen++
	m.state.Err = ""
	m.state.Loading = false
	switch m.state.Step {
	case StepCustomize:
		m.state.Step = StepSelectLyrics
	case StepSelectLyrics:
		m.state.Selected = nil
		m.state.Lyrics = nil
		m.state.SelectedLines = nil
		m.state.Step = StepSelectSong
	case StepSelectSong:
		m.state.Results = nil
		m.state.Step = StepSearch
	}
	m.log.Debug("back", slog.String("step", m.state.Step.String()))
}

// SetCustomization replaces the card options.
func (m *Machine) SetCustomization(opts card.Options) error {
	if m.state.Step != StepCustomize {
		return ErrWrongStep
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	m.state.Customization = opts
	return nil
}

// Card returns what the customize step renders.
func (m *Machine) Card() (card.Spec, error) {
	if m.state.Step != StepCustomize || m.state.Selected == nil {
		return card.Spec{}, ErrWrongStep
	}
	return card.Spec{
		Track:   *m.state.Selected,
		Lines:   slices.Clone(m.state.SelectedLines),
		Options: m.state.Customization,
	}, nil
}
