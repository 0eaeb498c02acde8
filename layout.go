package msgshot

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
)

type FragmentKind uint8

const (
	FragText FragmentKind = iota
	FragChip
	FragGlyph
)

// ColorRole names which palette entry paints a fragment, keeping the layout
// engine theme-agnostic.
type ColorRole uint8

const (
	ColorBody ColorRole = iota
	ColorChip
	ColorPing
)

const (
	chipPadX     = 6
	chipPadY     = 2
	interFragGap = 2
)

// Fragment is one positioned box on a layout line: a measured text run, an
// atomic mention chip, or an atomic glyph box.
type Fragment struct {
	Kind   FragmentKind
	Text   string // FragText: run; FragChip: label; FragGlyph: alt text
	Face   font.Face
	Role   ColorRole
	Glyph  *GlyphAsset
	Width  int
	Height int
}

// Line is an ordered fragment sequence. Width is the sum of fragment widths
// plus inter-fragment gaps; Height is the tallest fragment; Baseline is the
// text baseline offset from the line's top edge, with shorter fragments
// vertically centered against the tallest.
type Line struct {
	Fragments []Fragment
	Width     int
	Height    int
	Baseline  int
}

// Layout converts a token sequence into visual lines no wider than maxWidth,
// except for the single case of one atomic fragment wider than maxWidth,
// which is placed alone on its own line and allowed to overflow. The returned
// flag reports whether any glyph degraded to a placeholder. Identical inputs
// produce identical output; the only side effect is glyph cache population.
func Layout(tokens []Token, maxWidth int, fonts *FontSet, store *GlyphStore) ([]Line, bool) {
	l := &layouter{maxWidth: maxWidth, fonts: fonts, store: store}
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenText:
			l.textRun(tok)
		case TokenMention:
			l.mention(tok)
		case TokenCustomEmoji:
			l.glyph(tok.Key, tok.Text)
		case TokenUnicodeEmoji:
			l.glyph(EmojiKey(tok.Text), tok.Text)
		case TokenLineBreak:
			l.newline()
		}
	}
	if len(l.cur.Fragments) > 0 {
		l.newline()
	}
	return l.lines, l.degraded
}

type layouter struct {
	maxWidth int
	fonts    *FontSet
	store    *GlyphStore

	lines    []Line
	cur      Line
	degraded bool
}

func (l *layouter) push(f Fragment) {
	if len(l.cur.Fragments) > 0 {
		l.cur.Width += interFragGap
	}
	l.cur.Fragments = append(l.cur.Fragments, f)
	l.cur.Width += f.Width
	if f.Height > l.cur.Height {
		l.cur.Height = f.Height
	}
}

func (l *layouter) newline() {
	if l.cur.Height == 0 {
		l.cur.Height = l.fonts.bodyLineHeight()
	}
	l.cur.Baseline = (l.cur.Height-l.fonts.bodyLineHeight())/2 + l.fonts.bodyAscent()
	l.lines = append(l.lines, l.cur)
	l.cur = Line{}
}

// place appends an atomic fragment, wrapping first when it would not fit on a
// non-empty line.
func (l *layouter) place(f Fragment) {
	if len(l.cur.Fragments) > 0 && l.cur.Width+interFragGap+f.Width > l.maxWidth {
		l.newline()
	}
	l.push(f)
}

// avail is the horizontal budget left after the current line content and the
// not-yet-flushed pending text.
func (l *layouter) avail(pendW int) int {
	x := l.cur.Width
	if len(l.cur.Fragments) > 0 {
		x += interFragGap
	}
	return l.maxWidth - x - pendW
}

func (l *layouter) textRun(tok Token) {
	face := l.fonts.bodyFace(tok.Emphasis)
	h := l.fonts.bodyLineHeight()

	var pend strings.Builder
	pendW := 0
	flush := func() {
		if pend.Len() == 0 {
			return
		}
		l.push(Fragment{Kind: FragText, Text: pend.String(), Face: face, Role: ColorBody, Width: pendW, Height: h})
		pend.Reset()
		pendW = 0
	}

	for _, seg := range splitSegments(tok.Text) {
		w := measure(face, seg)

		if r0, _ := utf8.DecodeRuneInString(seg); unicode.IsSpace(r0) {
			// A line never starts with whitespace.
			if pend.Len() == 0 && len(l.cur.Fragments) == 0 {
				continue
			}
			if w <= l.avail(pendW) {
				pend.WriteString(seg)
				pendW += w
			} else {
				flush()
				l.newline()
			}
			continue
		}

		// Greedy inclusive wrap: a word that exactly fills the remaining
		// space stays on the current line.
		if w <= l.avail(pendW) {
			pend.WriteString(seg)
			pendW += w
			continue
		}

		flush()
		if len(l.cur.Fragments) > 0 {
			l.newline()
		}
		if w > l.maxWidth {
			// Single word wider than the whole line: alone, overflowing.
			l.push(Fragment{Kind: FragText, Text: seg, Face: face, Role: ColorBody, Width: w, Height: h})
			l.newline()
			continue
		}
		pend.WriteString(seg)
		pendW = w
	}
	flush()
}

func (l *layouter) mention(tok Token) {
	role := ColorChip
	if tok.Mention == MentionEveryone {
		role = ColorPing
	}
	face := l.fonts.Body
	l.place(Fragment{
		Kind:   FragChip,
		Text:   tok.Label,
		Face:   face,
		Role:   role,
		Width:  measure(face, tok.Label) + 2*chipPadX,
		Height: l.fonts.bodyLineHeight() + 2*chipPadY,
	})
}

func (l *layouter) glyph(key, alt string) {
	a := l.store.Get(key)
	if a.Placeholder {
		l.degraded = true
	}
	dim := l.fonts.bodyLineHeight()
	l.place(Fragment{Kind: FragGlyph, Text: alt, Glyph: a, Width: dim, Height: dim})
}

// splitSegments cuts a run into alternating whitespace and word segments,
// preserving every byte so the segments concatenate back to s.
func splitSegments(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	start := 0
	r0, _ := utf8.DecodeRuneInString(s)
	lastSpace := unicode.IsSpace(r0)
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if sp != lastSpace {
			parts = append(parts, s[start:i])
			start = i
			lastSpace = sp
		}
	}
	return append(parts, s[start:])
}
