// Package card renders selected lyric lines onto a shareable PNG card and
// exports it.
package card

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lyricard/lyricard/internal/provider"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Dimensions at scale 1, in pixels.
const (
	cardWidth    = 360
	padding      = 24
	cornerRadius = 16
	artSize      = 64
	headerGap    = 16
	titlePx      = 18
	artistPx     = 14
	artistGap    = 4
	separatorGap = 16
	lineGap      = 8
	leading      = 1.25
)

// Spec is everything a card shows.
type Spec struct {
	Track   provider.Track
	Lines   []string
	Options Options
}

// Render rasterizes spec at the given scale factor. art may be nil, in which
// case a placeholder block stands in for the album artwork.
func Render(spec Spec, art image.Image, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: scale %d", ErrRender, scale)
	}
	if len(spec.Lines) == 0 {
		return nil, fmt.Errorf("%w: no lines selected", ErrRender)
	}
	if err := spec.Options.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	f, err := loadFaces(spec.Options, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer f.Close()

	s := scale
	width := cardWidth * s
	pad := padding * s
	inner := width - 2*pad
	art64 := artSize * s
	textX := pad + art64 + headerGap*s
	textW := width - pad - textX

	titleLines := wrap(f.title, spec.Track.Name, textW)
	artistLines := wrap(f.artist, spec.Track.ArtistLine(), textW)
	titleLH := lineHeight(titlePx, s)
	artistLH := lineHeight(artistPx, s)
	textH := len(titleLines)*titleLH + artistGap*s + len(artistLines)*artistLH
	headerH := max(art64, textH)

	sepY := pad + headerH + separatorGap*s
	sepH := max(1, s)
	lyricsY := sepY + sepH + separatorGap*s

	lyricLH := lineHeight(spec.Options.Size.Pixels(), s)
	var blocks [][]string
	lyricsH := 0
	for i, line := range spec.Lines {
		wrapped := wrap(f.lyric, line, inner)
		blocks = append(blocks, wrapped)
		lyricsH += len(wrapped) * lyricLH
		if i > 0 {
			lyricsH += lineGap * s
		}
	}
	height := lyricsY + lyricsH + pad

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillBackground(img, spec.Options.Background)

	ink := newInk(spec.Options)
	artRect := image.Rect(pad, pad+(headerH-art64)/2, pad+art64, pad+(headerH-art64)/2+art64)
	if art != nil {
		draw.CatmullRom.Scale(img, artRect, art, art.Bounds(), draw.Over, nil)
	} else {
		draw.Draw(img, artRect, image.NewUniform(ink.placeholder), image.Point{}, draw.Over)
	}

	y := pad + (headerH-textH)/2
	for _, l := range titleLines {
		ink.text(img, f.title, l, textX, y, titleLH, ink.fg, s)
		y += titleLH
	}
	y += artistGap * s
	for _, l := range artistLines {
		ink.text(img, f.artist, l, textX, y, artistLH, ink.dim, s)
		y += artistLH
	}

	drawSeparator(img, pad, sepY, inner, sepH, ink.separator)

	y = lyricsY
	for i, block := range blocks {
		if i > 0 {
			y += lineGap * s
		}
		for _, l := range block {
			ink.text(img, f.lyric, l, pad, y, lyricLH, ink.fg, s)
			y += lyricLH
		}
	}

	roundCorners(img, cornerRadius*s)
	return img, nil
}

func lineHeight(px float64, scale int) int {
	return int(math.Ceil(px * leading * float64(scale)))
}

// ink carries the colors derived from the text options.
type ink struct {
	fg          color.NRGBA
	dim         color.NRGBA
	shadow      color.NRGBA
	outline     color.NRGBA
	separator   color.NRGBA
	placeholder color.NRGBA
	effect      TextEffect
}

func newInk(o Options) ink {
	if o.TextLight {
		return ink{
			fg:          color.NRGBA{0xff, 0xff, 0xff, 0xff},
			dim:         color.NRGBA{0xff, 0xff, 0xff, 0xcc},
			shadow:      color.NRGBA{0, 0, 0, 0x80},
			outline:     color.NRGBA{0, 0, 0, 0xb3},
			separator:   color.NRGBA{0xff, 0xff, 0xff, 0x4d},
			placeholder: color.NRGBA{0xff, 0xff, 0xff, 0x33},
			effect:      o.Effect,
		}
	}
	return ink{
		fg:          color.NRGBA{0, 0, 0, 0xff},
		dim:         color.NRGBA{0, 0, 0, 0xcc},
		shadow:      color.NRGBA{0, 0, 0, 0x33},
		outline:     color.NRGBA{0xff, 0xff, 0xff, 0xb3},
		separator:   color.NRGBA{0, 0, 0, 0x33},
		placeholder: color.NRGBA{0, 0, 0, 0x33},
		effect:      o.Effect,
	}
}

// text draws one line whose box starts at top with height lh.
func (k ink) text(dst draw.Image, face font.Face, s string, x, top, lh int, c color.NRGBA, scale int) {
	m := face.Metrics()
	boxH := (m.Ascent + m.Descent).Ceil()
	baseline := top + (lh-boxH)/2 + m.Ascent.Ceil()
	put := func(dx, dy int, col color.NRGBA) {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x+dx, baseline+dy),
		}
		d.DrawString(s)
	}
	switch k.effect {
	case EffectShadow:
		put(2*scale, 2*scale, k.shadow)
	case EffectOutline:
		for _, o := range [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			put(o[0]*scale, o[1]*scale, k.outline)
		}
	}
	put(0, 0, c)
}

// wrap breaks s into lines no wider than maxW, splitting inside words that
// do not fit on their own.
func wrap(face font.Face, s string, maxW int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	limit := fixed.I(maxW)
	var out []string
	cur := ""
	for _, w := range words {
		cand := w
		if cur != "" {
			cand = cur + " " + w
		}
		if font.MeasureString(face, cand) <= limit {
			cur = cand
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		cur = ""
		for font.MeasureString(face, w) > limit {
			head, rest := breakWord(face, w, limit)
			out = append(out, head)
			w = rest
		}
		cur = w
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func breakWord(face font.Face, w string, limit fixed.Int26_6) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && font.MeasureString(face, string(runes[:n+1])) <= limit {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func fillBackground(img *image.RGBA, bg Background) {
	b := img.Bounds()
	if !bg.Gradient {
		draw.Draw(img, b, image.NewUniform(bg.At(0)), image.Point{}, draw.Src)
		return
	}
	// The gradient runs along the diagonal, so color depends only on x+y.
	span := b.Dx() + b.Dy() - 2
	if span < 1 {
		span = 1
	}
	lut := make([]color.RGBA, span+1)
	for i := range lut {
		lut[i] = bg.At(float64(i) / float64(span))
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, lut[(x-b.Min.X)+(y-b.Min.Y)])
		}
	}
}

// drawSeparator paints a horizontal rule that fades out toward both ends.
func drawSeparator(img *image.RGBA, x, y, w, h int, c color.NRGBA) {
	for dx := 0; dx < w; dx++ {
		t := float64(dx) / float64(max(1, w-1))
		fade := 1 - math.Abs(2*t-1)
		col := color.NRGBA{c.R, c.G, c.B, uint8(float64(c.A) * fade)}
		for dy := 0; dy < h; dy++ {
			blend(img, x+dx, y+dy, col)
		}
	}
}

func blend(img *image.RGBA, x, y int, c color.NRGBA) {
	src := image.NewUniform(c)
	draw.Draw(img, image.Rect(x, y, x+1, y+1), src, image.Point{}, draw.Over)
}

// roundCorners clears pixels outside a radius-r arc in each corner, with one
// pixel of coverage-based antialiasing.
func roundCorners(img *image.RGBA, r int) {
	b := img.Bounds()
	if r <= 0 || 2*r > b.Dx() || 2*r > b.Dy() {
		return
	}
	rf := float64(r)
	for dy := 0; dy < r; dy++ {
		for dx := 0; dx < r; dx++ {
			cx := rf - (float64(dx) + 0.5)
			cy := rf - (float64(dy) + 0.5)
			cover := rf - math.Hypot(cx, cy) + 0.5
			if cover >= 1 {
				continue
			}
			if cover < 0 {
				cover = 0
			}
			for _, p := range []image.Point{
				{b.Min.X + dx, b.Min.Y + dy},
				{b.Max.X - 1 - dx, b.Min.Y + dy},
				{b.Min.X + dx, b.Max.Y - 1 - dy},
				{b.Max.X - 1 - dx, b.Max.Y - 1 - dy},
			} {
				px := img.RGBAAt(p.X, p.Y)
				img.SetRGBA(p.X, p.Y, color.RGBA{
					R: uint8(float64(px.R) * cover),
					G: uint8(float64(px.G) * cover),
					B: uint8(float64(px.B) * cover),
					A: uint8(float64(px.A) * cover),
				})
			}
		}
	}
}
