package msgshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// EmojiSource supplies raw encoded image bytes for a glyph key. A source
// returning ErrEmojiNotFound (or any error) degrades that glyph to the
// placeholder; it never fails a render.
type EmojiSource interface {
	FetchEmoji(key string) ([]byte, error)
}

// GlyphAsset is one decoded emoji bitmap, cached for the process lifetime and
// owned by the GlyphStore. Borrowers must not retain it past a render call.
type GlyphAsset struct {
	Key    string
	Image  image.Image
	Width  int
	Height int

	// Placeholder marks the designated blank-box asset substituted for an
	// unresolvable key.
	Placeholder bool
}

const placeholderDim = 72

// GlyphStore caches decoded glyph assets by key. Reads are concurrent; a race
// that fetches the same missing key twice resolves by idempotent overwrite.
type GlyphStore struct {
	src EmojiSource

	mu    sync.RWMutex
	cache map[string]*GlyphAsset
}

func NewGlyphStore(src EmojiSource) *GlyphStore {
	return &GlyphStore{
		src:   src,
		cache: map[string]*GlyphAsset{},
	}
}

// Get returns the cached asset for key, fetching and decoding it on first
// use. An unresolvable or undecodable key yields a placeholder asset, cached
// like any other so the source is asked at most once.
func (g *GlyphStore) Get(key string) *GlyphAsset {
	g.mu.RLock()
	a, ok := g.cache[key]
	g.mu.RUnlock()
	if ok {
		return a
	}

	a = g.load(key)

	g.mu.Lock()
	g.cache[key] = a
	g.mu.Unlock()
	return a
}

func (g *GlyphStore) load(key string) *GlyphAsset {
	if g.src != nil {
		if raw, err := g.src.FetchEmoji(key); err == nil {
			if img, _, err := image.Decode(bytes.NewReader(raw)); err == nil {
				b := img.Bounds()
				return &GlyphAsset{Key: key, Image: img, Width: b.Dx(), Height: b.Dy()}
			}
		}
	}
	return &GlyphAsset{
		Key:         key,
		Image:       image.NewUniform(color.RGBA{128, 128, 128, 64}),
		Width:       placeholderDim,
		Height:      placeholderDim,
		Placeholder: true,
	}
}

// EmojiKey maps a unicode emoji cluster to its stable asset key: the lowercase
// hex codepoints joined by dashes, the naming scheme of the twemoji asset set.
// Twemoji drops U+FE0F from names unless the sequence contains a ZWJ, so
// "❤️" keys as "2764" while "❤️‍\U0001F525" keeps it.
func EmojiKey(cluster string) string {
	zwj := strings.ContainsRune(cluster, 0x200D)
	var sb strings.Builder
	for _, r := range cluster {
		if r == 0xFE0F && !zwj {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('-')
		}
		fmt.Fprintf(&sb, "%x", r)
	}
	return sb.String()
}
