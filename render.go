package msgshot

import (
	"bytes"
	"image/png"
	"sync"
	"unicode/utf8"
)

// Input bounds. Content beyond the rune budget is truncated deterministically
// instead of growing the canvas without limit; the line cap guards the same
// way against pathological wrapping.
const (
	maxContentRunes = 2000
	maxBodyLines    = 60
)

// Renderer turns message snapshots into finished images. It is safe for
// concurrent use: parsed typefaces are immutable, font faces are pooled per
// call, and the glyph store handles its own locking.
type Renderer struct {
	store *GlyphStore
	lib   *fontLibrary
	faces sync.Pool
}

// NewRenderer loads the bundled typefaces and prepares a glyph store backed
// by src. src may be nil, in which case every emoji renders as a placeholder.
func NewRenderer(src EmojiSource) (*Renderer, error) {
	lib, err := loadFontLibrary()
	if err != nil {
		return nil, err
	}
	r := &Renderer{store: NewGlyphStore(src), lib: lib}
	r.faces.New = func() any {
		fs, err := lib.newFontSet()
		if err != nil {
			return nil
		}
		return fs
	}
	return r, nil
}

// Glyphs exposes the renderer's glyph store, mainly so callers can pre-warm
// the cache.
func (r *Renderer) Glyphs() *GlyphStore { return r.store }

// Render produces the final image for one snapshot under one theme. Missing
// auxiliary data (emoji, avatar, attachments) degrades to placeholders and is
// reported via RenderResult.Degraded; only structurally invalid input (nil
// snapshot, empty author, theme outside the enum) fails the call. Identical
// input yields byte-identical output.
func (r *Renderer) Render(s *MessageSnapshot, theme Theme) (*RenderResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	pal, err := ResolvePalette(theme)
	if err != nil {
		return nil, err
	}

	fonts, _ := r.faces.Get().(*FontSet)
	if fonts == nil {
		fonts, err = r.lib.newFontSet()
		if err != nil {
			return nil, err
		}
	}
	defer r.faces.Put(fonts)

	tokens := Tokenize(truncateContent(s.Content), s.Mentions)
	lines, degraded := Layout(tokens, contentWidth, fonts, r.store)
	if len(lines) > maxBodyLines {
		lines = lines[:maxBodyLines]
	}

	img, composeDegraded := compose(s, lines, pal, fonts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &RenderResult{
		PNG:      buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Degraded: degraded || composeDegraded,
	}, nil
}

func truncateContent(s string) string {
	if utf8.RuneCountInString(s) <= maxContentRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxContentRunes]) + "…"
}
