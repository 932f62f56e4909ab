package card

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// TextEffect decorates card text.
type TextEffect string

const (
	EffectNone    TextEffect = "none"
	EffectShadow  TextEffect = "shadow"
	EffectOutline TextEffect = "outline"
)

// TextEffects lists every legal effect in display order.
var TextEffects = []TextEffect{EffectNone, EffectShadow, EffectOutline}

// FontFamily names one of the bundled type pairings.
type FontFamily string

const (
	FontDefault     FontFamily = "Default"
	FontModern      FontFamily = "Modern"
	FontClassic     FontFamily = "Classic"
	FontNeutral     FontFamily = "Neutral"
	FontElegant     FontFamily = "Elegant"
	FontBold        FontFamily = "Bold"
	FontSlab        FontFamily = "Slab"
	FontScript      FontFamily = "Script"
	FontHandwritten FontFamily = "Handwritten"
)

var FontFamilies = []FontFamily{
	FontDefault, FontModern, FontClassic, FontNeutral, FontElegant,
	FontBold, FontSlab, FontScript, FontHandwritten,
}

// FontSize is the lyric text size token.
type FontSize string

const (
	SizeSmall  FontSize = "Small"
	SizeMedium FontSize = "Medium"
	SizeLarge  FontSize = "Large"
)

var FontSizes = []FontSize{SizeSmall, SizeMedium, SizeLarge}

// Pixels returns the lyric text height at scale 1.
func (s FontSize) Pixels() float64 {
	switch s {
	case SizeSmall:
		return 20
	case SizeLarge:
		return 30
	default:
		return 24
	}
}

// Background is a solid color or a two-stop diagonal gradient.
type Background struct {
	From     colorful.Color
	To       colorful.Color
	Gradient bool
}

// ParseBackground accepts "#RRGGBB" for a solid fill or "#RRGGBB..#RRGGBB"
// for a gradient running from the top-left to the bottom-right corner.
func ParseBackground(s string) (Background, error) {
	s = strings.TrimSpace(s)
	from, to, isGradient := strings.Cut(s, "..")
	c1, err := colorful.Hex(strings.TrimSpace(from))
	if err != nil {
		return Background{}, fmt.Errorf("%w: background %q", ErrInvalidOption, s)
	}
	if !isGradient {
		return Background{From: c1, To: c1}, nil
	}
	c2, err := colorful.Hex(strings.TrimSpace(to))
	if err != nil {
		return Background{}, fmt.Errorf("%w: background %q", ErrInvalidOption, s)
	}
	return Background{From: c1, To: c2, Gradient: true}, nil
}

// MustBackground is ParseBackground for package-level presets.
func MustBackground(s string) Background {
	b, err := ParseBackground(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String renders the descriptor form accepted by ParseBackground.
func (b Background) String() string {
	if b.Gradient {
		return b.From.Hex() + ".." + b.To.Hex()
	}
	return b.From.Hex()
}

// At returns the fill color at t in [0,1] along the gradient axis.
func (b Background) At(t float64) color.RGBA {
	c := b.From
	if b.Gradient {
		c = b.From.BlendLab(b.To, t).Clamped()
	}
	r, g, bl := c.RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: 0xff}
}

// PresetBackgrounds is the palette offered in the customize step.
var PresetBackgrounds = []Background{
	MustBackground("#1DB954"),
	MustBackground("#EF0078"),
	MustBackground("#F18A00"),
	MustBackground("#E13300"),
	MustBackground("#008743"),
	MustBackground("#2D46B9"),
	MustBackground("#8400E1"),
	MustBackground("#191414"),
	MustBackground("#1DB954..#191414"),
	MustBackground("#EF0078..#F18A00"),
	MustBackground("#2D46B9..#8400E1"),
}

// Options is the full set of card customizations.
type Options struct {
	Background Background
	TextLight  bool
	Font       FontFamily
	Size       FontSize
	Effect     TextEffect
}

// DefaultOptions mirrors the first preset with light, medium, unadorned text.
func DefaultOptions() Options {
	return Options{
		Background: PresetBackgrounds[0],
		TextLight:  true,
		Font:       FontDefault,
		Size:       SizeMedium,
		Effect:     EffectNone,
	}
}

// Validate reports the first field outside its enumeration.
func (o Options) Validate() error {
	if !contains(FontFamilies, o.Font) {
		return fmt.Errorf("%w: font %q", ErrInvalidOption, o.Font)
	}
	if !contains(FontSizes, o.Size) {
		return fmt.Errorf("%w: font size %q", ErrInvalidOption, o.Size)
	}
	if !contains(TextEffects, o.Effect) {
		return fmt.Errorf("%w: text effect %q", ErrInvalidOption, o.Effect)
	}
	if !o.Background.From.IsValid() || (o.Background.Gradient && !o.Background.To.IsValid()) {
		return fmt.Errorf("%w: background out of gamut", ErrInvalidOption)
	}
	return nil
}

// NextBackground steps through PresetBackgrounds. A custom background starts
// from the first preset.
func (o Options) NextBackground(step int) Options {
	idx := -1
	for i, b := range PresetBackgrounds {
		if b.String() == o.Background.String() {
			idx = i
			break
		}
	}
	if idx < 0 {
		o.Background = PresetBackgrounds[0]
		return o
	}
	o.Background = PresetBackgrounds[modulo(idx+step, len(PresetBackgrounds))]
	return o
}

func (o Options) NextFont() Options {
	o.Font = cycle(FontFamilies, o.Font)
	return o
}

func (o Options) NextSize() Options {
	o.Size = cycle(FontSizes, o.Size)
	return o
}

func (o Options) NextEffect() Options {
	o.Effect = cycle(TextEffects, o.Effect)
	return o
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func cycle[T comparable](list []T, cur T) T {
	for i, x := range list {
		if x == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func modulo(i, n int) int {
	return ((i % n) + n) % n
}
