package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/rhgrant/msgshot"
)

// renderRequest is the JSON wire form of a message snapshot. []byte fields
// arrive base64-encoded per encoding/json convention.
type renderRequest struct {
	Author struct {
		DisplayName string `json:"display_name"`
		Avatar      []byte `json:"avatar,omitempty"`
		RoleColor   string `json:"role_color,omitempty"` // "#rrggbb"
	} `json:"author"`
	Content   string            `json:"content"`
	Mentions  map[string]string `json:"mentions,omitempty"`
	Timestamp string            `json:"timestamp"`
	Reply     *struct {
		Author  string `json:"author"`
		Snippet string `json:"snippet"`
	} `json:"reply,omitempty"`
	Attachments [][]byte `json:"attachments,omitempty"`
}

func (r *renderRequest) toSnapshot() (*msgshot.MessageSnapshot, error) {
	s := &msgshot.MessageSnapshot{
		Author: msgshot.Author{
			DisplayName: r.Author.DisplayName,
			Avatar:      r.Author.Avatar,
		},
		Content:     r.Content,
		Mentions:    r.Mentions,
		Timestamp:   r.Timestamp,
		Attachments: r.Attachments,
	}
	if r.Author.RoleColor != "" {
		c, err := parseHexColor(r.Author.RoleColor)
		if err != nil {
			return nil, err
		}
		s.Author.RoleColor = &c
	}
	if r.Reply != nil {
		s.Reply = &msgshot.ReplyPreview{
			AuthorLabel: r.Reply.Author,
			Snippet:     r.Reply.Snippet,
		}
	}
	return s, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("parse color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
