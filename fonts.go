package msgshot

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const (
	bodyFontSize  = 22
	nameFontSize  = 24
	smallFontSize = 18
	fontDPI       = 72
)

// fontLibrary holds the parsed typefaces, loaded once per Renderer and
// immutable afterwards. Faces built from them are not concurrency-safe, so
// each render call checks a FontSet out of a pool instead.
type fontLibrary struct {
	regular *sfnt.Font
	bold    *sfnt.Font
	italic  *sfnt.Font
}

func loadFontLibrary() (*fontLibrary, error) {
	lib := &fontLibrary{}
	var err error
	if lib.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, err
	}
	if lib.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, err
	}
	if lib.italic, err = opentype.Parse(goitalic.TTF); err != nil {
		return nil, err
	}
	return lib, nil
}

// FontSet is one render call's set of sized faces.
type FontSet struct {
	Body       font.Face
	BodyBold   font.Face
	BodyItalic font.Face
	Name       font.Face
	Small      font.Face

	bodyMetrics  font.Metrics
	smallMetrics font.Metrics
}

func (l *fontLibrary) newFontSet() (*FontSet, error) {
	face := func(f *sfnt.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
	}

	fs := &FontSet{}
	var err error
	if fs.Body, err = face(l.regular, bodyFontSize); err != nil {
		return nil, err
	}
	if fs.BodyBold, err = face(l.bold, bodyFontSize); err != nil {
		return nil, err
	}
	if fs.BodyItalic, err = face(l.italic, bodyFontSize); err != nil {
		return nil, err
	}
	if fs.Name, err = face(l.bold, nameFontSize); err != nil {
		return nil, err
	}
	if fs.Small, err = face(l.regular, smallFontSize); err != nil {
		return nil, err
	}
	fs.bodyMetrics = fs.Body.Metrics()
	fs.smallMetrics = fs.Small.Metrics()
	return fs, nil
}

// bodyFace picks the face matching a text run's emphasis. Bold wins when both
// flags are set.
func (fs *FontSet) bodyFace(e Emphasis) font.Face {
	switch {
	case e&EmphasisBold != 0:
		return fs.BodyBold
	case e&EmphasisItalic != 0:
		return fs.BodyItalic
	}
	return fs.Body
}

// bodyLineHeight is the pixel height of one body text line. Inline emoji are
// scaled to a square of this size.
func (fs *FontSet) bodyLineHeight() int {
	return fs.bodyMetrics.Height.Ceil()
}

func (fs *FontSet) bodyAscent() int {
	return fs.bodyMetrics.Ascent.Ceil()
}

func (fs *FontSet) smallLineHeight() int {
	return fs.smallMetrics.Height.Ceil()
}

func measure(f font.Face, s string) int {
	return font.MeasureString(f, s).Ceil()
}
