// Package ui holds the lipgloss themes used by the wizard screens.
package ui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name     string
	Accent   lipgloss.Style
	Dim      lipgloss.Style
	Text     lipgloss.Style
	Title    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Border   lipgloss.Style
	Selected lipgloss.Style // chosen lyric lines
	Cursor   lipgloss.Style // row under the cursor
	StepOn   lipgloss.Style // current step in the indicator
	StepOff  lipgloss.Style
}

// palette is the handful of colors a theme is built from.
type palette struct {
	accent, dim, text, title, err, ok, border, selected lipgloss.Color
}

func (p palette) theme(name string) Theme {
	return Theme{
		Name:     name,
		Accent:   lipgloss.NewStyle().Foreground(p.accent),
		Dim:      lipgloss.NewStyle().Foreground(p.dim),
		Text:     lipgloss.NewStyle().Foreground(p.text),
		Title:    lipgloss.NewStyle().Foreground(p.title).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(p.err).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(p.ok).Bold(true),
		Border:   lipgloss.NewStyle().Foreground(p.border),
		Selected: lipgloss.NewStyle().Foreground(p.selected).Bold(true),
		Cursor:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		StepOn:   lipgloss.NewStyle().Foreground(p.title).Bold(true).Underline(true),
		StepOff:  lipgloss.NewStyle().Foreground(p.dim),
	}
}

var themeNames = []string{"rainbow", "mono", "green", "light", "dark", "nocolor"}

var themeRegistry = map[string]func() Theme{
	"rainbow": Rainbow,
	"mono":    Monochrome,
	"green":   GreenTerminal,
	"light":   Light,
	"dark":    Dark,
	"nocolor": NoColor,
}

// ThemeNames returns the available theme names in cycling order.
func ThemeNames() []string {
	return append([]string(nil), themeNames...)
}

// GetTheme returns a theme by name, falling back to Rainbow. noColor forces
// NoColor regardless of name.
func GetTheme(name string, noColor bool) Theme {
	if noColor {
		return NoColor()
	}
	if fn, ok := themeRegistry[name]; ok {
		return fn()
	}
	return Rainbow()
}

func ValidTheme(name string) bool {
	_, ok := themeRegistry[name]
	return ok
}

// NextTheme returns the name following name in ThemeNames.
func NextTheme(name string) string {
	for i, n := range themeNames {
		if n == name {
			return themeNames[(i+1)%len(themeNames)]
		}
	}
	return themeNames[0]
}

// Rainbow is the default colorful theme.
func Rainbow() Theme {
	return palette{
		accent: "#FF6FF7", dim: "#6C6F93", text: "#E6E6FA", title: "#8EEBFF",
		err: "#FF5F56", ok: "#5CFF5C", border: "#7C7CFF", selected: "#FFA7C4",
	}.theme("rainbow")
}

func Monochrome() Theme {
	t := palette{
		accent: "#FFFFFF", dim: "#666666", text: "#CCCCCC", title: "#FFFFFF",
		err: "#FFFFFF", ok: "#CCCCCC", border: "#888888", selected: "#FFFFFF",
	}.theme("mono")
	t.Error = t.Error.Underline(true)
	t.Selected = t.Selected.Underline(true)
	return t
}

// GreenTerminal is a classic green-on-black terminal theme.
func GreenTerminal() Theme {
	t := palette{
		accent: "#00FF00", dim: "#005500", text: "#00CC00", title: "#00FF00",
		err: "#00FF00", ok: "#00FF00", border: "#008800", selected: "#00FF00",
	}.theme("green")
	t.Error = t.Error.Reverse(true)
	t.Selected = t.Selected.Underline(true)
	return t
}

// Light suits terminals with a light background.
func Light() Theme {
	return palette{
		accent: "#1DB954", dim: "#8A8A8A", text: "#191414", title: "#2D46B9",
		err: "#E13300", ok: "#008743", border: "#B3B3B3", selected: "#EF0078",
	}.theme("light")
}

// Dark mirrors the card presets on a dark background.
func Dark() Theme {
	return palette{
		accent: "#1DB954", dim: "#727272", text: "#F0F0F0", title: "#FFFFFF",
		err: "#F18A00", ok: "#1DB954", border: "#404040", selected: "#1DB954",
	}.theme("dark")
}

// NoColor uses only bold, underline and reverse, for NO_COLOR environments.
func NoColor() Theme {
	reset := lipgloss.NewStyle()
	return Theme{
		Name:     "nocolor",
		Accent:   reset.Bold(true),
		Dim:      reset,
		Text:     reset,
		Title:    reset.Bold(true),
		Error:    reset.Bold(true),
		Success:  reset.Bold(true),
		Border:   reset,
		Selected: reset.Bold(true).Underline(true),
		Cursor:   reset.Reverse(true),
		StepOn:   reset.Bold(true).Underline(true),
		StepOff:  reset,
	}
}
