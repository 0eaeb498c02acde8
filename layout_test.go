package msgshot

import (
	"reflect"
	"strings"
	"testing"
)

func testFonts(t *testing.T) *FontSet {
	t.Helper()
	lib, err := loadFontLibrary()
	if err != nil {
		t.Fatalf("load fonts: %v", err)
	}
	fs, err := lib.newFontSet()
	if err != nil {
		t.Fatalf("font set: %v", err)
	}
	return fs
}

func TestLayoutSingleLine(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	toks := Tokenize("Hello <@123> \U0001F600", map[string]string{"123": "@alice"})
	lines, degraded := Layout(toks, contentWidth, fonts, store)

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := len(lines[0].Fragments); got != 4 {
		t.Fatalf("got %d fragments, want 4", got)
	}
	wantKinds := []FragmentKind{FragText, FragChip, FragText, FragGlyph}
	for i, f := range lines[0].Fragments {
		if f.Kind != wantKinds[i] {
			t.Fatalf("fragment %d kind = %d, want %d", i, f.Kind, wantKinds[i])
		}
	}
	// nil source: the emoji degraded to a placeholder
	if !degraded {
		t.Fatal("expected degraded layout with nil emoji source")
	}
}

func TestLayoutGreedyInclusiveWrap(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	wordW := measure(fonts.Body, "word")
	spaceW := measure(fonts.Body, " ")
	// capacity for exactly three words: the third word lands precisely on the
	// boundary and must stay (inclusive tie-break)
	maxW := 3*wordW + 2*spaceW

	toks := Tokenize(strings.Repeat("word ", 19)+"word", nil)
	lines, _ := Layout(toks, maxW, fonts, store)

	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7", len(lines))
	}
	if got := lines[0].Fragments[0].Text; got != "word word word" {
		t.Fatalf("first line = %q, want three words", got)
	}
	if got := lines[6].Fragments[0].Text; got != "word word" {
		t.Fatalf("last line = %q, want two words", got)
	}
	for i, ln := range lines {
		if ln.Width > maxW {
			t.Fatalf("line %d width %d exceeds max %d", i, ln.Width, maxW)
		}
	}
}

func TestLayoutWidthInvariant(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	content := "the quick brown fox jumps over the lazy dog and <@1> waves \U0001F600 " +
		"then carries on with a considerably longer sentence to force plenty of wrapping"
	toks := Tokenize(content, map[string]string{"1": "@fox"})

	const maxW = 220
	lines, _ := Layout(toks, maxW, fonts, store)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width > maxW && len(ln.Fragments) != 1 {
			t.Fatalf("line %d: width %d > %d with %d fragments", i, ln.Width, maxW, len(ln.Fragments))
		}
	}
}

func TestLayoutOverlongWordAloneOnLine(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	long := strings.Repeat("x", 80)
	toks := Tokenize("a "+long+" b", nil)
	lines, _ := Layout(toks, 100, fonts, store)

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	mid := lines[1]
	if len(mid.Fragments) != 1 || mid.Fragments[0].Text != long {
		t.Fatalf("middle line = %+v, want the long word alone", mid.Fragments)
	}
	if mid.Width <= 100 {
		t.Fatalf("middle line width %d, expected overflow beyond 100", mid.Width)
	}
}

func TestLayoutChipAtomic(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	toks := Tokenize("aaaa bbbb <@1> cccc", map[string]string{"1": "@a-rather-long-display-name"})
	lines, _ := Layout(toks, 120, fonts, store)

	chips := 0
	for _, ln := range lines {
		for _, f := range ln.Fragments {
			if f.Kind == FragChip {
				chips++
				if f.Text != "@a-rather-long-display-name" {
					t.Fatalf("chip label split: %q", f.Text)
				}
			}
		}
	}
	if chips != 1 {
		t.Fatalf("got %d chip fragments, want exactly 1", chips)
	}
}

func TestLayoutLineBreakForcesNewLine(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	lines, _ := Layout(Tokenize("a\nb\n\nc", nil), contentWidth, fonts, store)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (including the blank one)", len(lines))
	}
	if len(lines[2].Fragments) != 0 {
		t.Fatalf("blank line has fragments: %+v", lines[2].Fragments)
	}
	if lines[2].Height != fonts.bodyLineHeight() {
		t.Fatalf("blank line height %d, want %d", lines[2].Height, fonts.bodyLineHeight())
	}
}

func TestLayoutEmojiScaledToLineHeight(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	lines, _ := Layout(Tokenize("\U0001F600", nil), contentWidth, fonts, store)
	f := lines[0].Fragments[0]
	if f.Kind != FragGlyph {
		t.Fatalf("fragment kind = %d, want glyph", f.Kind)
	}
	if dim := fonts.bodyLineHeight(); f.Width != dim || f.Height != dim {
		t.Fatalf("glyph box %dx%d, want %dx%d", f.Width, f.Height, dim, dim)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	fonts := testFonts(t)
	store := NewGlyphStore(nil)

	toks := Tokenize("some words <@1> and \U0001F600 more words to wrap around", map[string]string{"1": "@x"})
	a, _ := Layout(toks, 240, fonts, store)
	b, _ := Layout(toks, 240, fonts, store)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical input produced different layouts")
	}
}
