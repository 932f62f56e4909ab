// Package lrc parses time-synced lyrics in the LRC text format.
//
// Only line-level timestamps of the form [mm:ss.xx] or [mm:ss.xxx] are
// recognised. Tag lines such as [ar:Artist] or [offset:+200] do not match the
// timestamp grammar and are skipped.
package lrc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Line is a single timed lyric line.
type Line struct {
	Time float64 // seconds from the start of the track
	Text string
}

var timestampRe = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\](.*)`)

// Parse converts LRC text into lyric lines in source order. Lines without a
// timestamp, and timestamps with no text after them, produce no output. The
// result is never nil.
func Parse(text string) []Line {
	out := make([]Line, 0)
	for _, raw := range strings.Split(text, "\n") {
		m := timestampRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(m[4])
		if body == "" {
			continue
		}
		out = append(out, Line{Time: timestamp(m[1], m[2], m[3]), Text: body})
	}
	return out
}

// timestamp assumes the regexp already guaranteed decimal digits.
func timestamp(min, sec, frac string) float64 {
	mm, _ := strconv.Atoi(min)
	ss, _ := strconv.Atoi(sec)
	ff, _ := strconv.Atoi(frac)
	return float64(mm*60+ss) + float64(ff)/math.Pow10(len(frac))
}

// Texts returns the text of each line, preserving order.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
