package msgshot

import (
	"errors"
	"fmt"
	"image/color"
)

// Theme selects one of the two built-in visual styles. Exactly one theme is
// active per render call.
type Theme uint8

const (
	ThemeLight Theme = iota
	ThemeDark
)

// ErrInvalidTheme reports a Theme value outside the enum domain. Passing one
// is a caller bug, not a runtime condition to degrade around.
var ErrInvalidTheme = errors.New("msgshot: theme outside enum domain")

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	}
	return fmt.Sprintf("theme(%d)", uint8(t))
}

// ParseTheme maps a user-facing theme name to its enum value. The empty
// string parses as the default light theme.
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "light", "":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeLight, fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Palette is the full set of colors associated with one theme. Every field is
// populated for both built-in themes.
type Palette struct {
	Background color.RGBA
	Text       color.RGBA
	Muted      color.RGBA

	// NameDefault colors the author name when the snapshot carries no role color.
	NameDefault color.RGBA

	// ChipBG/ChipFG style user, role and channel mention chips.
	ChipBG color.RGBA
	ChipFG color.RGBA

	// PingBG/PingFG style @everyone and @here chips.
	PingBG color.RGBA
	PingFG color.RGBA

	Link color.RGBA

	// ThumbBorder frames attachment thumbnails and the "+N more" badge.
	ThumbBorder color.RGBA
}

var (
	lightPalette = Palette{
		Background:  color.RGBA{255, 255, 255, 255},
		Text:        color.RGBA{0, 0, 0, 255},
		Muted:       color.RGBA{150, 150, 150, 255},
		NameDefault: color.RGBA{6, 6, 7, 255},
		ChipBG:      color.RGBA{229, 231, 252, 255},
		ChipFG:      color.RGBA{88, 101, 242, 255},
		PingBG:      color.RGBA{253, 243, 221, 255},
		PingFG:      color.RGBA{192, 125, 10, 255},
		Link:        color.RGBA{0, 104, 224, 255},
		ThumbBorder: color.RGBA{227, 229, 232, 255},
	}
	darkPalette = Palette{
		Background:  color.RGBA{54, 57, 63, 255},
		Text:        color.RGBA{220, 221, 222, 255},
		Muted:       color.RGBA{150, 150, 150, 255},
		NameDefault: color.RGBA{255, 255, 255, 255},
		ChipBG:      color.RGBA{64, 68, 111, 255},
		ChipFG:      color.RGBA{201, 205, 251, 255},
		PingBG:      color.RGBA{84, 72, 41, 255},
		PingFG:      color.RGBA{250, 166, 26, 255},
		Link:        color.RGBA{0, 168, 252, 255},
		ThumbBorder: color.RGBA{41, 43, 47, 255},
	}
)

// ResolvePalette returns the fixed palette of a theme.
func ResolvePalette(t Theme) (Palette, error) {
	switch t {
	case ThemeLight:
		return lightPalette, nil
	case ThemeDark:
		return darkPalette, nil
	}
	return Palette{}, fmt.Errorf("%w: %d", ErrInvalidTheme, uint8(t))
}
