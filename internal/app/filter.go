package app

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lyricard/lyricard/internal/lrc"
	"github.com/sahilm/fuzzy"
)

// lyricRow is one visible row of the lyric list.
type lyricRow struct {
	index   int // position in the fetched lyrics
	text    string
	matched []int
}

// visibleLyrics applies the fuzzy filter to lines. Matches keep lyric order
// so the song still reads top to bottom.
func visibleLyrics(lines []lrc.Line, pattern string) []lyricRow {
	if strings.TrimSpace(pattern) == "" {
		rows := make([]lyricRow, len(lines))
		for i, l := range lines {
			rows[i] = lyricRow{index: i, text: l.Text}
		}
		return rows
	}
	matches := fuzzy.Find(pattern, lrc.Texts(lines))
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	rows := make([]lyricRow, len(matches))
	for i, mt := range matches {
		rows[i] = lyricRow{index: mt.Index, text: mt.Str, matched: mt.MatchedIndexes}
	}
	return rows
}

// highlightMatches styles the matched byte offsets of s.
func highlightMatches(s string, indices []int, style lipgloss.Style) string {
	if len(indices) == 0 {
		return s
	}
	matchSet := make(map[int]bool, len(indices))
	for _, idx := range indices {
		matchSet[idx] = true
	}
	var b strings.Builder
	for i, ch := range s {
		if matchSet[i] {
			b.WriteString(style.Render(string(ch)))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
