package msgshot

import (
	"errors"
	"image/color"
)

// Author is the subset of a message author needed for rendering.
type Author struct {
	DisplayName string
	// Avatar holds the author's avatar as encoded image bytes (png/jpeg/gif),
	// or nil when the author has none.
	Avatar []byte
	// RoleColor, when set, colors the display name in the header.
	RoleColor *color.RGBA
}

// ReplyPreview is the single-line preview of the message being replied to.
type ReplyPreview struct {
	AuthorLabel string
	Snippet     string
}

// MessageSnapshot is a fully-resolved message handed to the renderer. The
// caller (the command/event layer) is responsible for resolving mention ids
// to display labels ahead of time; the snapshot is not mutated by a render.
type MessageSnapshot struct {
	Author  Author
	Content string

	// Mentions maps a raw marker id ("123", role or channel ids alike) to a
	// display label such as "@alice". Missing entries degrade to a literal
	// fallback label, never to an error.
	Mentions map[string]string

	// Timestamp is display-ready, e.g. "3:04 PM". The renderer draws it as-is.
	Timestamp string

	Reply *ReplyPreview

	// Attachments are encoded image buffers to be thumbnailed, in order.
	Attachments [][]byte
}

var errNilSnapshot = errors.New("msgshot: nil snapshot")

func (s *MessageSnapshot) validate() error {
	if s == nil {
		return errNilSnapshot
	}
	if s.Author.DisplayName == "" {
		return errors.New("msgshot: snapshot author has no display name")
	}
	return nil
}

// RenderResult is the finished image. PNG holds the encoded pixels; Width and
// Height are the canvas dimensions in device pixels. Degraded reports that at
// least one placeholder was substituted for a missing asset, so callers can
// observe degradation without the render having failed.
type RenderResult struct {
	PNG    []byte
	Width  int
	Height int

	Degraded bool
}
