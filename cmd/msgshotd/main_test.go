package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coyove/sdss/contrib/plru"
	"github.com/sirupsen/logrus"

	"github.com/rhgrant/msgshot"
)

func setupWorld(t *testing.T) {
	t.Helper()
	var err error
	world.renderer, err = msgshot.NewRenderer(nil)
	if err != nil {
		t.Fatal(err)
	}
	world.themes, err = msgshot.OpenThemeStore(filepath.Join(t.TempDir(), "themes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { world.themes.Close() })
	world.cache = plru.New[uint64, cachedRender](16, plru.Hash.Uint64, nil)
}

func postRender(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/render?theme=dark", strings.NewReader(body))
	w := httptest.NewRecorder()
	handleRender(Ctx{Request: r, ResponseWriter: w, Query: r.URL.Query()})
	return w
}

func TestRenderCacheHitKeepsDegradedHeader(t *testing.T) {
	setupWorld(t)

	// nil emoji source: the emoji degrades, so the response must carry the
	// degraded header on the miss and on every hit of the same key
	body := `{"author":{"display_name":"alice"},"content":"❤️","timestamp":"3:04 PM"}`

	first := postRender(t, body)
	if first.Code != 200 {
		t.Fatalf("first render: %d %s", first.Code, first.Body)
	}
	if first.Header().Get("X-Msgshot-Degraded") != "1" {
		t.Fatal("miss response missing degraded header")
	}

	second := postRender(t, body)
	if second.Code != 200 {
		t.Fatalf("second render: %d %s", second.Code, second.Body)
	}
	if second.Header().Get("X-Msgshot-Degraded") != "1" {
		t.Fatal("cache hit dropped degraded header")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatal("cache hit served different bytes")
	}
}

func TestRenderRejectsNonPost(t *testing.T) {
	setupWorld(t)

	r := httptest.NewRequest("GET", "/render", nil)
	w := httptest.NewRecorder()
	handleRender(Ctx{Request: r, ResponseWriter: w, Query: r.URL.Query()})
	if w.Code != 405 {
		t.Fatalf("GET /render = %d, want 405", w.Code)
	}
}

func TestLogFormatter(t *testing.T) {
	f := &logFormatter{}
	_, file, line, _ := runtime.Caller(0)

	entry := &logrus.Entry{
		Time:    time.Date(2026, 8, 31, 12, 30, 45, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Caller:  &runtime.Frame{File: file, Line: line},
	}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	want := "0831 12:30:45.000 INFO main_test.go:" + strconv.Itoa(line) + " hello\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	entry.Level = logrus.ErrorLevel
	entry.Caller = nil
	out, _ = f.Format(entry)
	if string(out) != "0831 12:30:45.000 ERROR - hello\n" {
		t.Fatalf("error entry formatted as %q", out)
	}
}
