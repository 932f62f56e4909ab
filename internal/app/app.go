package app

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lyricard/lyricard/internal/artwork"
	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/config"
	"github.com/lyricard/lyricard/internal/provider"
	"github.com/lyricard/lyricard/internal/ui"
	"github.com/lyricard/lyricard/internal/wizard"
)

// ArtworkFetcher loads album artwork for the card.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Searcher provider.TrackSearcher
	Lyrics   provider.LyricsFetcher
	Artwork  ArtworkFetcher // nil disables artwork
	Sharer   card.Sharer    // nil or unavailable hides the share action
	Logger   *slog.Logger
	// InitialQuery is typed into the search box and submitted on start.
	InitialQuery string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

type Model struct {
	cfg      *config.Config
	machine  *wizard.Machine
	art      ArtworkFetcher
	sharer   card.Sharer
	exporter card.Exporter
	log      *slog.Logger
	protocol artwork.Protocol

	theme     ui.Theme
	themeName string
	noColor   bool

	input     textinput.Model
	filter    textinput.Model
	filtering bool
	spinner   spinner.Model

	cursor     int
	cancel     context.CancelFunc
	exporting  bool
	sharing    bool
	preview    string
	previewSeq int
	status     string
	errorMsg   string
	errorSeq   int
	showHelp   bool
	width      int
	height     int
	autoSubmit bool
}

func New(cfg *config.Config, deps Deps) Model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	getenv := deps.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	opts, err := cfg.Card.Options()
	if err != nil {
		opts = card.DefaultOptions()
	}
	noColor := getenv("NO_COLOR") != "" || cfg.UI.NoEmoji

	in := textinput.New()
	in.Placeholder = "Search for a song…"
	in.Prompt = "› "
	in.CharLimit = 200
	in.SetValue(deps.InitialQuery)
	in.Focus()

	filter := textinput.New()
	filter.Placeholder = "filter lines"
	filter.Prompt = "/"

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	var sharer card.Sharer
	if deps.Sharer != nil && deps.Sharer.Available() {
		sharer = deps.Sharer
	}
	art := deps.Artwork
	if !cfg.Artwork.Enabled {
		art = nil
	}

	return Model{
		cfg: cfg,
		machine: wizard.New(wizard.Config{
			Searcher:      deps.Searcher,
			Lyrics:        deps.Lyrics,
			Customization: opts,
			Logger:        log,
		}),
		art:        art,
		sharer:     sharer,
		exporter:   card.Exporter{Dir: cfg.Export.Dir},
		log:        log,
		protocol:   artwork.Resolve(cfg.PreviewProtocol(), getenv),
		theme:      ui.GetTheme(cfg.UI.Theme, noColor),
		themeName:  cfg.UI.Theme,
		noColor:    noColor,
		input:      in,
		filter:     filter,
		spinner:    sp,
		autoSubmit: deps.InitialQuery != "",
	}
}

type submitMsg struct{}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.autoSubmit {
		cmds = append(cmds, func() tea.Msg { return submitMsg{} })
	}
	return tea.Batch(cmds...)
}

// State exposes the wizard state for rendering and tests.
func (m Model) State() wizard.State { return m.machine.State() }

func (m Model) busy() bool {
	return m.machine.State().Loading || m.exporting || m.sharing
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-6)
		if m.machine.Step() == wizard.StepCustomize {
			return m.requestPreview()
		}
		return m, nil
	case submitMsg:
		return m.submit()
	case outcomeMsg:
		prev := m.machine.Step()
		if !m.machine.Apply(msg.outcome) {
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m = m.stepChanged(prev)
		return m, nil
	case previewMsg:
		if msg.seq != m.previewSeq {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn("card preview", slog.Any("err", msg.err))
			m.preview = ""
			return m, nil
		}
		m.preview = msg.out
		return m, nil
	case artworkMsg:
		if msg.err != nil && !errors.Is(msg.err, artwork.ErrNotFound) {
			m.log.Warn("artwork prefetch", slog.String("url", msg.url), slog.Any("err", msg.err))
		}
		return m, nil
	case exportedMsg:
		m.exporting = false
		if msg.err != nil {
			m.log.Error("export card", slog.Any("err", msg.err))
			return m.setErrorText("Could not save the card.")
		}
		m.log.Info("card exported", slog.String("path", msg.path))
		m.status = "Saved " + msg.path
		return m, nil
	case sharedMsg:
		m.sharing = false
		if msg.err != nil {
			m.log.Error("share card", slog.Any("err", msg.err))
			return m.setErrorText("Could not share the card.")
		}
		m.status = "Copied card details to the clipboard"
		return m, nil
	case clearErrorMsg:
		if msg.seq != m.errorSeq {
			return m, nil
		}
		m.errorMsg = ""
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.machine.Step() == wizard.StepSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch m.machine.Step() {
	case wizard.StepSearch:
		return m.handleSearchKey(msg)
	case wizard.StepSelectSong:
		return m.handleSongKey(msg)
	case wizard.StepSelectLyrics:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleLyricsKey(msg)
	case wizard.StepCustomize:
		return m.handleCustomizeKey(msg)
	}
	return m, nil
}

// handleCommonKey covers keys shared by the list steps.
func (m Model) handleCommonKey(msg tea.KeyMsg, rows int) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "?":
		m.showHelp = true
	case "T":
		m.themeName = ui.NextTheme(m.themeName)
		m.theme = ui.GetTheme(m.themeName, m.noColor)
		m.status = "Theme: " + m.themeName
	case "esc":
		m2, cmd := m.back()
		return m2, cmd, true
	case "j", "down":
		if m.cursor < rows-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, rows-1)
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()
	case "esc":
		m.input.Reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSongKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.machine.State().Results
	if m2, cmd, ok := m.handleCommonKey(msg, len(results)); ok {
		return m2, cmd
	}
	if msg.String() != "enter" || len(results) == 0 {
		return m, nil
	}
	track := results[clamp(m.cursor, 0, len(results)-1)]
	prev := m.machine.Step()
	op, err := m.machine.SelectTrack(track)
	if err != nil {
		return m.setError(err)
	}
	m = m.stepChanged(prev)
	m, cmd := m.runOp(op)
	return m, tea.Batch(cmd, m.prefetchArtworkCmd(track))
}

func (m Model) handleLyricsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.machine.State()
	rows := visibleLyrics(st.Lyrics, m.filter.Value())
	if m2, cmd, ok := m.handleCommonKey(msg, len(rows)); ok {
		return m2, cmd
	}
	switch msg.String() {
	case " ":
		if len(rows) == 0 {
			return m, nil
		}
		row := rows[clamp(m.cursor, 0, len(rows)-1)]
		if err := m.machine.ToggleLine(row.text); err != nil && !errors.Is(err, wizard.ErrLyricsPending) {
			return m.setError(err)
		}
	case "/":
		if st.LyricsFetched() && len(st.Lyrics) > 0 {
			m.filtering = true
			return m, m.filter.Focus()
		}
	case "enter":
		prev := m.machine.Step()
		if err := m.machine.Continue(); err != nil {
			if errors.Is(err, wizard.ErrNothingSelected) {
				m.status = "Select at least one line to continue"
				return m, nil
			}
			return m.setError(err)
		}
		m = m.stepChanged(prev)
		return m.requestPreview()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Reset()
		m.filter.Blur()
		m.cursor = 0
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "up", "down":
		rows := visibleLyrics(m.machine.State().Lyrics, m.filter.Value())
		m2, cmd, _ := m.handleCommonKey(msg, len(rows))
		return m2, cmd
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m Model) handleCustomizeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m2, cmd, ok := m.handleCommonKey(msg, 0); ok {
		return m2, cmd
	}
	opts := m.machine.State().Customization
	switch msg.String() {
	case "b":
		opts = opts.NextBackground(1)
	case "B":
		opts = opts.NextBackground(-1)
	case "t":
		opts.TextLight = !opts.TextLight
	case "f":
		opts = opts.NextFont()
	case "s":
		opts = opts.NextSize()
	case "e":
		opts = opts.NextEffect()
	case "d":
		if m.exporting {
			return m, nil
		}
		return m.exportCard()
	case "x":
		if m.sharer == nil || m.sharing {
			return m, nil
		}
		return m.shareCard()
	default:
		return m, nil
	}
	if err := m.machine.SetCustomization(opts); err != nil {
		return m.setError(err)
	}
	return m.requestPreview()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	op, err := m.machine.Submit(m.input.Value())
	if err != nil {
		if errors.Is(err, wizard.ErrBlankQuery) {
			return m, nil
		}
		return m.setError(err)
	}
	m.status = ""
	return m.runOp(op)
}

func (m Model) back() (Model, tea.Cmd) {
	if m.machine.Step() == wizard.StepSearch {
		m.machine.Back()
		return m, nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	prev := m.machine.Step()
	m.machine.Back()
	return m.stepChanged(prev), nil
}

// stepChanged resets per-step view state after a transition.
func (m Model) stepChanged(prev wizard.Step) Model {
	step := m.machine.Step()
	if step == prev {
		return m
	}
	m.status = ""
	m.filtering = false
	m.filter.Reset()
	m.filter.Blur()
	if step == wizard.StepSearch {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	// Coming back from customize keeps the place in the lyric list.
	if !(prev == wizard.StepCustomize && step == wizard.StepSelectLyrics) {
		m.cursor = 0
	}
	if step != wizard.StepCustomize {
		m.preview = ""
		m.previewSeq++
	}
	return m
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
