package msgshot

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func testFetcher(t *testing.T, handler http.Handler) (*EmojiFetcher, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	f, err := NewEmojiFetcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	f.twemojiURL = srv.URL + "/twemoji/"
	f.customURL = srv.URL + "/custom/"
	return f, dir
}

func TestEmojiFetcherRoutesByKey(t *testing.T) {
	var lastPath atomic.Value
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath.Store(r.URL.Path)
		w.Write([]byte("img"))
	}))

	if _, err := f.FetchEmoji("1f600"); err != nil {
		t.Fatal(err)
	}
	if got := lastPath.Load(); got != "/twemoji/1f600.png" {
		t.Fatalf("codepoint key hit %v", got)
	}

	if _, err := f.FetchEmoji("987654321"); err != nil {
		t.Fatal(err)
	}
	if got := lastPath.Load(); got != "/custom/987654321.png" {
		t.Fatalf("numeric id hit %v", got)
	}
}

func TestEmojiFetcherDiskCache(t *testing.T) {
	var hits atomic.Int32
	f, dir := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("payload"))
	}))

	a, err := f.FetchEmoji("1f600")
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.FetchEmoji("1f600")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("cached bytes differ from fetched bytes")
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("upstream hit %d times, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "1f600.png")); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}

func TestEmojiFetcherNotFound(t *testing.T) {
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if _, err := f.FetchEmoji("1f9e9"); !errors.Is(err, ErrEmojiNotFound) {
		t.Fatalf("got %v, want ErrEmojiNotFound", err)
	}
}

func TestEmojiFetcherUpstreamError(t *testing.T) {
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	if _, err := f.FetchEmoji("1f600"); err == nil || errors.Is(err, ErrEmojiNotFound) {
		t.Fatalf("got %v, want a non-404 upstream error", err)
	}
}

func TestEmojiFetcherRetriesTransientFailure(t *testing.T) {
	var hits atomic.Int32
	f, _ := testFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("img"))
	}))

	b, err := f.FetchEmoji("1f600")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "img" {
		t.Fatalf("got %q after retry", b)
	}
	if n := hits.Load(); n < 2 {
		t.Fatalf("upstream hit %d times, want a retry", n)
	}
}
