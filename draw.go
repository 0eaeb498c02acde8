package msgshot

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas geometry of the message template. The width is the target client's
// message column; height is computed from content. These are product-visual
// defaults, kept as constants rather than scattered literals.
const (
	canvasWidth  = 800
	contentLeft  = 100
	contentWidth = 680
	bottomPad    = 20

	avatarSize = 64
	avatarX    = 20
	avatarY    = 20

	nameTop      = 20
	timestampTop = 50
	headerHeight = 90

	lineGap = 6

	replyPad           = 8
	replySnippetBudget = 80

	thumbWidth  = 160
	thumbHeight = 120
	thumbGap    = 8
	maxThumbs   = 4

	chipCorner = 4
)

// compose draws the full message onto a canvas sized exactly to its content
// and reports whether any layer degraded to a placeholder.
func compose(s *MessageSnapshot, lines []Line, pal Palette, fonts *FontSet) (*image.RGBA, bool) {
	degraded := false

	replyH := 0
	if s.Reply != nil {
		replyH = fonts.smallLineHeight() + replyPad
	}
	bodyH := 0
	for i, ln := range lines {
		bodyH += ln.Height
		if i > 0 {
			bodyH += lineGap
		}
	}
	thumbsH := 0
	if len(s.Attachments) > 0 {
		thumbsH = thumbHeight + thumbGap
	}

	height := replyH + headerHeight + bodyH + thumbsH + bottomPad
	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pal.Background), image.Point{}, draw.Src)

	if s.Reply != nil {
		drawReplyLine(img, s.Reply, pal, fonts)
	}

	if !drawAvatar(img, s.Author.Avatar, replyH+avatarY) {
		drawAvatarPlaceholder(img, s.Author.DisplayName, replyH+avatarY, fonts)
		if s.Author.Avatar != nil {
			degraded = true
		}
	}

	nameColor := pal.NameDefault
	if s.Author.RoleColor != nil {
		nameColor = *s.Author.RoleColor
	}
	nameAscent := fonts.Name.Metrics().Ascent.Ceil()
	drawText(img, fonts.Name, nameColor, contentLeft, replyH+nameTop+nameAscent, s.Author.DisplayName)

	smallAscent := fonts.smallMetrics.Ascent.Ceil()
	drawText(img, fonts.Small, pal.Muted, contentLeft, replyH+timestampTop+smallAscent, s.Timestamp)

	y := replyH + headerHeight
	for _, ln := range lines {
		drawLine(img, ln, contentLeft, y, pal)
		y += ln.Height + lineGap
	}
	if len(lines) > 0 {
		y -= lineGap
	}

	if len(s.Attachments) > 0 {
		if !drawThumbStrip(img, s.Attachments, y+thumbGap, pal, fonts) {
			degraded = true
		}
	}

	return img, degraded
}

func drawLine(img *image.RGBA, ln Line, left, top int, pal Palette) {
	x := left
	for _, f := range ln.Fragments {
		fragTop := top + (ln.Height-f.Height)/2
		switch f.Kind {
		case FragText:
			drawText(img, f.Face, pal.Text, x, top+ln.Baseline, f.Text)
		case FragChip:
			bg, fg := pal.ChipBG, pal.ChipFG
			if f.Role == ColorPing {
				bg, fg = pal.PingBG, pal.PingFG
			}
			fillRoundRect(img, image.Rect(x, fragTop, x+f.Width, fragTop+f.Height), chipCorner, bg)
			drawText(img, f.Face, fg, x+chipPadX, top+ln.Baseline, f.Text)
		case FragGlyph:
			g := f.Glyph.Image
			if b := g.Bounds(); b.Dx() != f.Width || b.Dy() != f.Height {
				if !f.Glyph.Placeholder {
					g = resize.Resize(uint(f.Width), uint(f.Height), g, resize.Bicubic)
				}
			}
			draw.Draw(img, image.Rect(x, fragTop, x+f.Width, fragTop+f.Height), g, g.Bounds().Min, draw.Over)
		}
		x += f.Width + interFragGap
	}
}

func drawReplyLine(img *image.RGBA, r *ReplyPreview, pal Palette, fonts *FontSet) {
	baseline := replyPad/2 + fonts.smallMetrics.Ascent.Ceil()
	x := contentLeft

	label := "↱ " + r.AuthorLabel + "  "
	drawText(img, fonts.Small, pal.Muted, x, baseline, label)
	x += measure(fonts.Small, label)

	snippet := truncateSnippet(r.Snippet, fonts.Small, canvasWidth-bottomPad-x)
	drawText(img, fonts.Small, pal.Muted, x, baseline, snippet)
}

// truncateSnippet caps a reply snippet at the character budget and then at
// the pixel budget, appending an ellipsis when anything was cut.
func truncateSnippet(s string, face font.Face, maxW int) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)

	cut := false
	if utf8.RuneCountInString(s) > replySnippetBudget {
		s = string([]rune(s)[:replySnippetBudget])
		cut = true
	}
	const ellipsis = "…"
	ellW := measure(face, ellipsis)
	for s != "" && measure(face, s)+ellW > maxW {
		r := []rune(s)
		s = string(r[:len(r)-1])
		cut = true
	}
	if cut {
		s += ellipsis
	}
	return s
}

// drawAvatar decodes and draws the circular avatar; false means the caller
// should fall back to the placeholder disc.
func drawAvatar(img *image.RGBA, raw []byte, top int) bool {
	if len(raw) == 0 {
		return false
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return false
	}
	scaled := resize.Resize(avatarSize, avatarSize, src, resize.Bicubic)
	r := image.Rect(avatarX, top, avatarX+avatarSize, top+avatarSize)
	draw.DrawMask(img, r, scaled, scaled.Bounds().Min, &circleMask{d: avatarSize}, image.Point{}, draw.Over)
	return true
}

var placeholderDisc = color.RGBA{88, 101, 242, 255}

// drawAvatarPlaceholder draws an initial-letter disc when no avatar image is
// available.
func drawAvatarPlaceholder(img *image.RGBA, name string, top int, fonts *FontSet) {
	r := image.Rect(avatarX, top, avatarX+avatarSize, top+avatarSize)
	draw.DrawMask(img, r, image.NewUniform(placeholderDisc), image.Point{}, &circleMask{d: avatarSize}, image.Point{}, draw.Over)

	initial, _ := utf8.DecodeRuneInString(name)
	letter := string(unicode.ToUpper(initial))
	bounds, _ := font.BoundString(fonts.Name, letter)
	gw := (bounds.Max.X - bounds.Min.X).Ceil()
	gh := (bounds.Max.Y - bounds.Min.Y).Ceil()
	x := avatarX + (avatarSize-gw)/2 - bounds.Min.X.Floor()
	y := top + (avatarSize-gh)/2 - bounds.Min.Y.Floor()
	drawText(img, fonts.Name, color.RGBA{255, 255, 255, 255}, x, y, letter)
}

// drawThumbStrip draws the attachment row: up to maxThumbs fixed-size crops,
// with overflow collapsed into a "+N more" badge in the last slot. Returns
// false when any attachment failed to decode.
func drawThumbStrip(img *image.RGBA, attachments [][]byte, top int, pal Palette, fonts *FontSet) bool {
	ok := true

	n := len(attachments)
	shown := n
	badge := 0
	if n > maxThumbs {
		shown = maxThumbs - 1
		badge = n - shown
	}

	x := contentLeft
	for i := 0; i < shown; i++ {
		cell := image.Rect(x, top, x+thumbWidth, top+thumbHeight)
		src, _, err := image.Decode(bytes.NewReader(attachments[i]))
		if err != nil {
			draw.Draw(img, cell, image.NewUniform(pal.ThumbBorder), image.Point{}, draw.Src)
			ok = false
		} else {
			draw.Draw(img, cell, coverCrop(src, thumbWidth, thumbHeight), image.Point{}, draw.Src)
		}
		x += thumbWidth + thumbGap
	}

	if badge > 0 {
		cell := image.Rect(x, top, x+thumbWidth, top+thumbHeight)
		fillRoundRect(img, cell, chipCorner, pal.ChipBG)
		label := "+" + strconv.Itoa(badge) + " more"
		w := measure(fonts.Body, label)
		baseline := top + (thumbHeight-fonts.bodyLineHeight())/2 + fonts.bodyAscent()
		drawText(img, fonts.Body, pal.ChipFG, x+(thumbWidth-w)/2, baseline, label)
	}
	return ok
}

// coverCrop scales src to cover w x h preserving aspect ratio, then center
// crops to exactly w x h.
func coverCrop(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	scale := math.Max(float64(w)/float64(sw), float64(h)/float64(sh))
	nw := int(math.Ceil(float64(sw) * scale))
	nh := int(math.Ceil(float64(sh) * scale))
	scaled := resize.Resize(uint(nw), uint(nh), src, resize.Bicubic)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	off := image.Pt((nw-w)/2, (nh-h)/2).Add(scaled.Bounds().Min)
	draw.Draw(out, out.Bounds(), scaled, off, draw.Src)
	return out
}

func drawText(dst *image.RGBA, face font.Face, col color.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

type circleMask struct {
	d int
}

func (c *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (c *circleMask) Bounds() image.Rectangle { return image.Rect(0, 0, c.d, c.d) }

func (c *circleMask) At(x, y int) color.Color {
	r := float64(c.d) / 2
	dx := float64(x) + 0.5 - r
	dy := float64(y) + 0.5 - r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// fillRoundRect fills r with a rounded-corner rectangle of radius rad, drawn
// row by row with circular insets at the corner rows.
func fillRoundRect(dst *image.RGBA, r image.Rectangle, rad int, col color.RGBA) {
	src := image.NewUniform(col)
	h := r.Dy()
	for y := 0; y < h; y++ {
		t := 0
		if y < rad {
			t = rad - y
		} else if y >= h-rad {
			t = y - (h - rad) + 1
		}
		inset := 0
		if t > 0 && t <= rad {
			inset = rad - int(math.Sqrt(float64(rad*rad-t*t))+0.5)
		}
		row := image.Rect(r.Min.X+inset, r.Min.Y+y, r.Max.X-inset, r.Min.Y+y+1)
		draw.Draw(dst, row, src, image.Point{}, draw.Over)
	}
}
