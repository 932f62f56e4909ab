package card

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"
)

var ttfs = map[string][]byte{
	"goregular":         goregular.TTF,
	"gobold":            gobold.TTF,
	"goitalic":          goitalic.TTF,
	"gobolditalic":      gobolditalic.TTF,
	"gomedium":          gomedium.TTF,
	"gomediumitalic":    gomediumitalic.TTF,
	"gomono":            gomono.TTF,
	"gomonobold":        gomonobold.TTF,
	"gosmallcaps":       gosmallcaps.TTF,
	"gosmallcapsitalic": gosmallcapsitalic.TTF,
}

// pairing names the regular and bold faces behind a FontFamily.
type pairing struct {
	regular string
	bold    string
}

var pairings = map[FontFamily]pairing{
	FontDefault:     {"goregular", "gobold"},
	FontModern:      {"gomedium", "gobold"},
	FontClassic:     {"goitalic", "gobolditalic"},
	FontNeutral:     {"gomono", "gomonobold"},
	FontElegant:     {"gosmallcaps", "gosmallcaps"},
	FontBold:        {"gobold", "gobold"},
	FontSlab:        {"gomonobold", "gomonobold"},
	FontScript:      {"gomediumitalic", "gobolditalic"},
	FontHandwritten: {"gosmallcapsitalic", "gosmallcapsitalic"},
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*opentype.Font{}
)

func parseFont(name string) (*opentype.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[name]; ok {
		return f, nil
	}
	data, ok := ttfs[name]
	if !ok {
		return nil, fmt.Errorf("unknown font %q", name)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	parsed[name] = f
	return f, nil
}

// openFace is replaced in tests.
var openFace = newFace

func newFace(name string, px float64) (font.Face, error) {
	f, err := parseFont(name)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	// DPI 72 makes Size a pixel height.
	return opentype.NewFace(f, &opentype.FaceOptions{Size: px, DPI: 72, Hinting: font.HintingFull})
}

// faces holds every face a card needs at one scale.
type faces struct {
	title  font.Face
	artist font.Face
	lyric  font.Face
}

func loadFaces(o Options, scale int) (*faces, error) {
	p, ok := pairings[o.Font]
	if !ok {
		return nil, fmt.Errorf("%w: font %q", ErrInvalidOption, o.Font)
	}
	s := float64(scale)
	title, err := openFace(p.bold, titlePx*s)
	if err != nil {
		return nil, err
	}
	artist, err := openFace(p.regular, artistPx*s)
	if err != nil {
		title.Close()
		return nil, err
	}
	lyric, err := openFace(p.bold, o.Size.Pixels()*s)
	if err != nil {
		title.Close()
		artist.Close()
		return nil, err
	}
	return &faces{title: title, artist: artist, lyric: lyric}, nil
}

func (f *faces) Close() {
	f.title.Close()
	f.artist.Close()
	f.lyric.Close()
}

// CheckFonts parses every bundled family. Used by the doctor command.
func CheckFonts() error {
	for _, fam := range FontFamilies {
		p := pairings[fam]
		if _, err := parseFont(p.regular); err != nil {
			return fmt.Errorf("font %s: %w", fam, err)
		}
		if _, err := parseFont(p.bold); err != nil {
			return fmt.Errorf("font %s bold: %w", fam, err)
		}
	}
	return nil
}
