package msgshot

import (
	"strings"
	"unicode/utf8"
)

// TokenKind tags the variants of the inline token sum type.
type TokenKind uint8

const (
	TokenText TokenKind = iota
	TokenMention
	TokenCustomEmoji
	TokenUnicodeEmoji
	TokenLineBreak
)

type MentionKind uint8

const (
	MentionUser MentionKind = iota
	MentionRole
	MentionChannel
	MentionEveryone
)

// Emphasis is a bitfield of text run styles.
type Emphasis uint8

const (
	EmphasisBold Emphasis = 1 << iota
	EmphasisItalic
)

// Token is one inline element of message content. Only the fields of the
// tagged Kind are meaningful; order in the slice is the only relationship
// between tokens.
type Token struct {
	Kind     TokenKind
	Text     string // TokenText: literal run; TokenUnicodeEmoji: the full cluster; TokenCustomEmoji: ":name:" alt text
	Emphasis Emphasis
	Label    string // TokenMention: resolved display label
	Mention  MentionKind
	Key      string // TokenCustomEmoji: stable asset id
}

// Tokenize splits raw message content into ordered tokens. It is a pure
// function and never fails: marker syntax that does not parse stays in the
// surrounding text run, and mention ids missing from mentions fall back to a
// literal "@id" / "#id" label.
func Tokenize(content string, mentions map[string]string) []Token {
	var toks []Token
	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			toks = append(toks, Token{Kind: TokenText, Text: run.String()})
			run.Reset()
		}
	}

	for i := 0; i < len(content); {
		c, w := utf8.DecodeRuneInString(content[i:])

		switch {
		case c == '\r':
			i += w

		case c == '\n':
			flush()
			toks = append(toks, Token{Kind: TokenLineBreak})
			i += w

		case c == '<':
			if tok, n, ok := parseMarker(content[i:], mentions); ok {
				flush()
				toks = append(toks, tok)
				i += n
				continue
			}
			run.WriteRune(c)
			i += w

		case c == '@':
			if strings.HasPrefix(content[i:], "@everyone") {
				flush()
				toks = append(toks, Token{Kind: TokenMention, Label: "@everyone", Mention: MentionEveryone})
				i += len("@everyone")
				continue
			}
			if strings.HasPrefix(content[i:], "@here") {
				flush()
				toks = append(toks, Token{Kind: TokenMention, Label: "@here", Mention: MentionEveryone})
				i += len("@here")
				continue
			}
			run.WriteRune(c)
			i += w

		case isEmojiBase(c):
			flush()
			cluster, n := emojiCluster(content[i:])
			toks = append(toks, Token{Kind: TokenUnicodeEmoji, Text: cluster})
			i += n

		default:
			run.WriteRune(c)
			i += w
		}
	}
	flush()
	return toks
}

// parseMarker attempts to read one <...> marker at the start of s. A failed
// parse returns ok=false and the caller treats '<' as literal text.
func parseMarker(s string, mentions map[string]string) (Token, int, bool) {
	end := strings.IndexByte(s, '>')
	if end < 2 || end > 64 {
		return Token{}, 0, false
	}
	body := s[1:end]
	n := end + 1

	if rest, ok := strings.CutPrefix(body, ":"); ok {
		return parseCustomEmoji(rest, n)
	}
	if rest, ok := strings.CutPrefix(body, "a:"); ok {
		return parseCustomEmoji(rest, n)
	}
	if id, ok := strings.CutPrefix(body, "@&"); ok && isDigits(id) {
		return mentionToken(MentionRole, id, mentions), n, true
	}
	if id, ok := strings.CutPrefix(body, "@"); ok {
		id = strings.TrimPrefix(id, "!")
		if isDigits(id) {
			return mentionToken(MentionUser, id, mentions), n, true
		}
	}
	if id, ok := strings.CutPrefix(body, "#"); ok && isDigits(id) {
		return mentionToken(MentionChannel, id, mentions), n, true
	}
	return Token{}, 0, false
}

func parseCustomEmoji(rest string, n int) (Token, int, bool) {
	name, id, ok := strings.Cut(rest, ":")
	if !ok || name == "" || !isDigits(id) {
		return Token{}, 0, false
	}
	return Token{Kind: TokenCustomEmoji, Key: id, Text: ":" + name + ":"}, n, true
}

func mentionToken(kind MentionKind, id string, mentions map[string]string) Token {
	label, ok := mentions[id]
	if !ok {
		if kind == MentionChannel {
			label = "#" + id
		} else {
			label = "@" + id
		}
	}
	return Token{Kind: TokenMention, Label: label, Mention: kind}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isEmojiBase reports whether r opens an emoji cluster. The ranges cover the
// pictographic blocks plus regional indicators; textual symbols outside them
// render as ordinary glyphs.
func isEmojiBase(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // misc symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // symbols extended-A
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0x2B50 || r == 0x2B55 || (r >= 0x2B05 && r <= 0x2B07) || r == 0x2B1B || r == 0x2B1C:
		return true
	}
	return false
}

func isEmojiContinuation(r rune) bool {
	return r == 0xFE0E || r == 0xFE0F || // variation selectors
		r == 0x20E3 || // combining keycap
		(r >= 0x1F3FB && r <= 0x1F3FF) // skin tones
}

// emojiCluster consumes one full emoji cluster at the start of s: the base
// rune, any continuation runes, ZWJ-joined follow-up emoji, and the second
// half of a regional-indicator flag pair.
func emojiCluster(s string) (string, int) {
	base, n := utf8.DecodeRuneInString(s)

	if base >= 0x1F1E6 && base <= 0x1F1FF {
		if r2, w := utf8.DecodeRuneInString(s[n:]); r2 >= 0x1F1E6 && r2 <= 0x1F1FF {
			n += w
		}
		return s[:n], n
	}

	for n < len(s) {
		r, w := utf8.DecodeRuneInString(s[n:])
		if isEmojiContinuation(r) {
			n += w
			continue
		}
		if r == 0x200D { // ZWJ joins the next emoji into this cluster
			r2, w2 := utf8.DecodeRuneInString(s[n+w:])
			if isEmojiBase(r2) {
				n += w + w2
				continue
			}
		}
		break
	}
	return s[:n], n
}
