package msgshot

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// ErrEmojiNotFound reports that the upstream asset set has no image for a
// key. The glyph store turns it into a placeholder.
var ErrEmojiNotFound = errors.New("msgshot: emoji not found")

const (
	twemojiBaseURL  = "https://raw.githubusercontent.com/twitter/twemoji/master/assets/72x72/"
	customEmojiBase = "https://cdn.discordapp.com/emojis/"
)

// EmojiFetcher resolves glyph keys over HTTP with an on-disk PNG cache.
// Codepoint keys ("1f600", "1f1ef-1f1f5") hit the twemoji asset set; numeric
// ids hit the custom-emoji CDN. Fetches retry transient failures; a 404 is
// final and returns ErrEmojiNotFound.
type EmojiFetcher struct {
	client *retryablehttp.Client
	dir    string

	// overridable in tests
	twemojiURL string
	customURL  string
}

// NewEmojiFetcher creates a fetcher caching under dir, which is created if
// missing.
func NewEmojiFetcher(dir string) (*EmojiFetcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.HTTPClient.Timeout = 8 * time.Second
	c.Logger = nil // suppress retryablehttp's default logging
	return &EmojiFetcher{
		client:     c,
		dir:        dir,
		twemojiURL: twemojiBaseURL,
		customURL:  customEmojiBase,
	}, nil
}

func (f *EmojiFetcher) FetchEmoji(key string) ([]byte, error) {
	path := filepath.Join(f.dir, key+".png")
	if b, err := os.ReadFile(path); err == nil {
		return b, nil
	}

	url := f.twemojiURL + key + ".png"
	if isDigits(key) {
		url = f.customURL + key + ".png"
	}

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch emoji %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrEmojiNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch emoji %s: status %d", key, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		logrus.Errorf("cache emoji %s: %v", key, err)
	}
	return b, nil
}
