package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lyricard/lyricard/internal/wizard"
	"github.com/mattn/go-runewidth"
)

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	st := m.machine.State()

	var body string
	switch st.Step {
	case wizard.StepSearch:
		body = m.renderSearch(st)
	case wizard.StepSelectSong:
		body = m.renderSongs(st)
	case wizard.StepSelectLyrics:
		body = m.renderLyrics(st)
	case wizard.StepCustomize:
		body = m.renderCustomize(st)
	}

	top := lipgloss.NewStyle().Bold(true).Render("Lyricard ▸ ") + m.renderSteps(st.Step)
	errLine := ""
	switch {
	case m.errorMsg != "":
		errLine = m.theme.Error.Render(m.errorMsg)
	case st.Err != "":
		errLine = m.theme.Error.Render(st.Err)
	}
	status := m.theme.Dim.Render(m.status)
	if m.exporting || m.sharing {
		status = m.spinner.View() + " " + status
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, errLine, body, "", status, m.theme.Dim.Render(m.keyHints(st)))
}

func (m Model) renderSteps(cur wizard.Step) string {
	parts := make([]string, len(wizard.Steps))
	for i, s := range wizard.Steps {
		if s == cur {
			parts[i] = m.theme.StepOn.Render(s.String())
		} else {
			parts[i] = m.theme.StepOff.Render(s.String())
		}
	}
	return strings.Join(parts, m.theme.Dim.Render(" · "))
}

func (m Model) renderSearch(st wizard.State) string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Search for a song") + "\n\n")
	b.WriteString(m.input.View() + "\n")
	if st.Loading {
		b.WriteString("\n" + m.spinner.View() + m.theme.Dim.Render(" Searching…") + "\n")
	}
	return b.String()
}

func (m Model) renderSongs(st wizard.State) string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Results for %q", strings.TrimSpace(st.Query))) + "\n\n")
	if len(st.Results) == 0 {
		b.WriteString(m.theme.Dim.Render("No songs found. Press esc to search again.") + "\n")
		return b.String()
	}
	start, end := m.window(len(st.Results))
	for i := start; i < end; i++ {
		t := st.Results[i]
		line := t.Name + " — " + t.ArtistLine()
		if t.Album != "" {
			line += " (" + t.Album + ")"
		}
		b.WriteString(m.row(i == m.cursor, m.truncate(line, m.rowWidth()), false) + "\n")
	}
	return b.String()
}

func (m Model) renderLyrics(st wizard.State) string {
	var b strings.Builder
	if st.Selected != nil {
		b.WriteString(m.theme.Title.Render(st.Selected.Name) + m.theme.Dim.Render(" — "+st.Selected.ArtistLine()) + "\n\n")
	}
	switch {
	case st.Loading || st.Lyrics == nil:
		b.WriteString(m.spinner.View() + m.theme.Dim.Render(" Loading lyrics…") + "\n")
		return b.String()
	case len(st.Lyrics) == 0:
		b.WriteString(m.theme.Dim.Render("Press esc to pick another song.") + "\n")
		return b.String()
	}

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	}
	rows := visibleLyrics(st.Lyrics, m.filter.Value())
	if len(rows) == 0 {
		b.WriteString(m.theme.Dim.Render("No lines match.") + "\n")
	}
	start, end := m.window(len(rows))
	for i := start; i < end; i++ {
		r := rows[i]
		text := m.truncate(r.text, m.rowWidth()-4)
		if len(r.matched) > 0 && text == r.text {
			text = highlightMatches(text, r.matched, m.theme.Accent)
		}
		b.WriteString(m.row(i == m.cursor, m.checkbox(st.IsSelected(r.text))+text, st.IsSelected(r.text)) + "\n")
	}
	b.WriteString("\n" + m.theme.Dim.Render(fmt.Sprintf("%d selected", len(st.SelectedLines))) + "\n")
	return b.String()
}

func (m Model) renderCustomize(st wizard.State) string {
	o := st.Customization
	text := "dark"
	if o.TextLight {
		text = "light"
	}
	settings := []string{
		m.theme.Title.Render("Customize your card"),
		"",
		m.setting("Background", o.Background.String(), "b/B"),
		m.setting("Text", text, "t"),
		m.setting("Font", string(o.Font), "f"),
		m.setting("Size", string(o.Size), "s"),
		m.setting("Effect", string(o.Effect), "e"),
		"",
		m.theme.Accent.Render("Lines"),
	}
	for _, l := range st.SelectedLines {
		settings = append(settings, "  "+m.theme.Text.Render(m.truncate(l, 40)))
	}
	left := strings.Join(settings, "\n")
	if m.preview == "" {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", m.preview)
}

func (m Model) setting(name, value, key string) string {
	return fmt.Sprintf("%s %s %s",
		m.theme.Dim.Render(fmt.Sprintf("%-10s", name)),
		m.theme.Text.Render(value),
		m.theme.Dim.Render("["+key+"]"))
}

func (m Model) row(current bool, s string, selected bool) string {
	prefix := "  "
	if current {
		prefix = "⏵ "
		if m.cfg.UI.NoEmoji {
			prefix = "> "
		}
	}
	switch {
	case current:
		return m.theme.Cursor.Render(prefix) + m.theme.Cursor.Render(s)
	case selected:
		return prefix + m.theme.Selected.Render(s)
	default:
		return prefix + m.theme.Text.Render(s)
	}
}

func (m Model) checkbox(on bool) string {
	switch {
	case on && !m.cfg.UI.NoEmoji:
		return "✓ "
	case on:
		return "[x] "
	case m.cfg.UI.NoEmoji:
		return "[ ] "
	default:
		return "  "
	}
}

// window returns the slice of rows that fits on screen around the cursor.
func (m Model) window(n int) (int, int) {
	visible := n
	if m.height > 0 {
		visible = max(3, m.height-10)
	}
	if n <= visible {
		return 0, n
	}
	start := clamp(m.cursor-visible/2, 0, n-visible)
	return start, start + visible
}

func (m Model) rowWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(10, m.width-4)
}

func (m Model) truncate(s string, w int) string {
	return runewidth.Truncate(s, w, "…")
}

func (m Model) keyHints(st wizard.State) string {
	switch st.Step {
	case wizard.StepSearch:
		return "enter search • esc clear • ctrl+c quit"
	case wizard.StepSelectSong:
		return "j/k move • enter select • esc back • T theme • ? help"
	case wizard.StepSelectLyrics:
		if m.filtering {
			return "type to filter • enter keep • esc clear"
		}
		return "j/k move • space toggle • / filter • enter continue • esc back • ? help"
	case wizard.StepCustomize:
		hints := "b/B background • t text • f font • s size • e effect • d download"
		if m.sharer != nil {
			hints += " • x share"
		}
		return hints + " • esc back"
	}
	return ""
}

func (m Model) renderHelp() string {
	lines := []string{
		m.theme.Title.Render("Help"),
		"",
		m.theme.Accent.Render("Global"),
		"  ?             : Toggle help",
		"  T             : Cycle UI theme",
		"  esc           : Go back one step",
		"  ctrl+c        : Quit",
		"",
		m.theme.Accent.Render("Lists"),
		"  j / k         : Move down / up",
		"  g / G         : First / last",
		"  enter         : Select / Continue",
		"",
		m.theme.Accent.Render("Lyrics"),
		"  space         : Toggle line",
		"  /             : Filter lines",
		"",
		m.theme.Accent.Render("Customize"),
		"  b / B         : Next / previous background",
		"  t             : Light or dark text",
		"  f / s / e     : Font / size / effect",
		"  d             : Download PNG",
	}
	if m.sharer != nil {
		lines = append(lines, "  x             : Share")
	}
	return strings.Join(lines, "\n")
}
