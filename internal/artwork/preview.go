package artwork

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Protocol selects how images are drawn in the terminal.
type Protocol string

const (
	ProtocolAuto  Protocol = "auto"
	ProtocolANSI  Protocol = "ansi"  // half-block characters, works everywhere
	ProtocolKitty Protocol = "kitty" // kitty graphics protocol
	ProtocolOff   Protocol = "off"
)

// ParseProtocol validates a configured protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ProtocolAuto:
		return ProtocolAuto, nil
	case ProtocolANSI, ProtocolKitty, ProtocolOff:
		return p, nil
	default:
		return "", fmt.Errorf("unknown preview protocol %q", s)
	}
}

// DetectProtocol picks the best protocol from the terminal environment.
func DetectProtocol(getenv func(string) string) Protocol {
	term := getenv("TERM")
	switch {
	case term == "dumb":
		return ProtocolOff
	case strings.Contains(term, "kitty"), getenv("KITTY_WINDOW_ID") != "":
		return ProtocolKitty
	case strings.Contains(term, "ghostty"), getenv("GHOSTTY_RESOURCES_DIR") != "":
		return ProtocolKitty
	case strings.EqualFold(getenv("TERM_PROGRAM"), "wezterm"):
		return ProtocolKitty
	default:
		return ProtocolANSI
	}
}

// Resolve turns ProtocolAuto into a concrete protocol.
func Resolve(p Protocol, getenv func(string) string) Protocol {
	if p == ProtocolAuto || p == "" {
		return DetectProtocol(getenv)
	}
	return p
}

// Preview renders img into at most widthCells by heightCells terminal cells.
func Preview(img image.Image, widthCells, heightCells int, p Protocol) (string, error) {
	if img == nil || widthCells <= 0 || heightCells <= 0 {
		return "", ErrInvalid
	}
	switch p {
	case ProtocolOff:
		return "", nil
	case ProtocolKitty:
		return kitty(img, widthCells, heightCells)
	default:
		return halfBlocks(img, widthCells, heightCells), nil
	}
}

// fit scales img to fit in w x h pixels keeping its aspect ratio.
func fit(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	nw := max(1, int(math.Round(float64(b.Dx())*scale)))
	nh := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// halfBlocks draws two pixels per cell using the upper half block glyph, the
// top pixel as foreground and the bottom one as background.
func halfBlocks(img image.Image, w, h int) string {
	px := fit(img, w, h*2)
	b := px.Bounds()
	var out strings.Builder
	for y := 0; y < b.Dy(); y += 2 {
		for x := 0; x < b.Dx(); x++ {
			top := px.RGBAAt(x, y)
			bottom := top
			if y+1 < b.Dy() {
				bottom = px.RGBAAt(x, y+1)
			}
			fmt.Fprintf(&out, "\x1b[38;5;%dm\x1b[48;5;%dm▀",
				rgbTo256(top.R, top.G, top.B), rgbTo256(bottom.R, bottom.G, bottom.B))
		}
		out.WriteString("\x1b[0m")
		if y+2 < b.Dy() {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// rgbTo256 maps a color onto the xterm 256-color palette.
func rgbTo256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return int((r-8)/10) + 232
	}
	ri := int(r) * 5 / 255
	gi := int(g) * 5 / 255
	bi := int(b) * 5 / 255
	return 16 + 36*ri + 6*gi + bi
}

// Typical cell size in pixels, used to size kitty payloads.
const (
	cellW = 10
	cellH = 20
)

func kitty(img image.Image, w, h int) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fit(img, w*cellW, h*cellH)); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	// Payloads are sent in chunks of at most 4096 bytes; m=1 marks more to come.
	const chunk = 4096
	var out strings.Builder
	for i := 0; i < len(data); i += chunk {
		end := min(i+chunk, len(data))
		more := 0
		if end < len(data) {
			more = 1
		}
		if i == 0 {
			fmt.Fprintf(&out, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", w, h, more, data[i:end])
		} else {
			fmt.Fprintf(&out, "\x1b_Gm=%d;%s\x1b\\", more, data[i:end])
		}
	}
	return out.String(), nil
}
