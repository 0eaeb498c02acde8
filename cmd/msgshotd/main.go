package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"hash/fnv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/coyove/sdss/contrib/plru"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rhgrant/msgshot"
)

const maxRequestBytes = 16 << 20

// cachedRender keeps the degraded bit with the bytes so cache hits answer
// with the same headers as the original miss.
type cachedRender struct {
	png      []byte
	degraded bool
}

var world struct {
	renderer *msgshot.Renderer
	themes   *msgshot.ThemeStore
	cache    *plru.Cache[uint64, cachedRender]
}

func main() {
	cfgPath := flag.String("config", "msgshot.toml", "config file path")
	flag.Parse()

	cfg, err := msgshot.LoadConfig(*cfgPath)
	if err != nil {
		logrus.Fatal(err)
	}

	out := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20,
			MaxBackups: 10,
			MaxAge:     7,
			Compress:   true,
		})
	}
	logrus.SetFormatter(&logFormatter{})
	logrus.SetOutput(out)
	logrus.SetReportCaller(true)

	fetcher, err := msgshot.NewEmojiFetcher(cfg.EmojiCacheDir)
	if err != nil {
		logrus.Fatal(err)
	}
	world.renderer, err = msgshot.NewRenderer(fetcher)
	if err != nil {
		logrus.Fatal(err)
	}
	world.themes, err = msgshot.OpenThemeStore(cfg.DBPath)
	if err != nil {
		logrus.Fatal(err)
	}
	world.cache = plru.New[uint64, cachedRender](cfg.RenderCacheSize, plru.Hash.Uint64, nil)

	handle("/render", handleRender)
	handle("/theme/", handleTheme)

	logrus.Infof("serving at %v", cfg.Listen)
	srv := http.Server{Addr: cfg.Listen}
	logrus.Fatal(srv.ListenAndServe())
}

func handleRender(c Ctx) {
	if c.Method != "POST" {
		c.WriteHeader(405)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.ResponseWriter, c.Request.Body, maxRequestBytes))
	if err != nil {
		c.Error(400, "read request: %v", err)
		return
	}

	theme, err := resolveTheme(c)
	if err != nil {
		c.Error(400, "%v", err)
		return
	}

	h := fnv.New64a()
	h.Write(body)
	key := h.Sum64()<<1 | uint64(theme)
	if cr, ok := world.cache.Get(key); ok {
		serveImage(c, cr)
		return
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.Error(400, "decode request: %v", err)
		return
	}
	snapshot, err := req.toSnapshot()
	if err != nil {
		c.Error(400, "%v", err)
		return
	}

	start := time.Now()
	res, err := world.renderer.Render(snapshot, theme)
	if err != nil {
		logrus.Errorf("render for %v: %v", c.RemoteAddr, err)
		c.Error(400, "render: %v", err)
		return
	}
	logrus.Infof("rendered %dx%d (%d bytes, degraded=%v) in %v",
		res.Width, res.Height, len(res.PNG), res.Degraded, time.Since(start))

	cr := cachedRender{png: res.PNG, degraded: res.Degraded}
	world.cache.Add(key, cr)
	serveImage(c, cr)
}

func resolveTheme(c Ctx) (msgshot.Theme, error) {
	if t := c.Query.Get("theme"); t != "" {
		return msgshot.ParseTheme(t)
	}
	return world.themes.GetTheme(c.Query.Get("guild")), nil
}

func serveImage(c Ctx, cr cachedRender) {
	if cr.degraded {
		c.ResponseWriter.Header().Set("X-Msgshot-Degraded", "1")
	}
	c.ResponseWriter.Header().Set("Content-Type", "image/png")
	c.ResponseWriter.Header().Set("Content-Length", strconv.Itoa(len(cr.png)))
	c.Write(cr.png)
}

func handleTheme(c Ctx) {
	guild := c.URL.Path[len("/theme/"):]
	if guild == "" {
		c.WriteHeader(404)
		return
	}

	switch c.Method {
	case "GET":
		c.ResponseWriter.Header().Set("Content-Type", "text/plain")
		c.Printf("%s\n", world.themes.GetTheme(guild))
	case "POST", "PUT":
		t, err := msgshot.ParseTheme(c.Query.Get("theme"))
		if err != nil {
			c.Error(400, "%v", err)
			return
		}
		if err := world.themes.SetTheme(guild, t); err != nil {
			logrus.Errorf("set theme for guild %s: %v", guild, err)
			c.WriteHeader(500)
			return
		}
		logrus.Infof("guild %s theme set to %s by %v", guild, t, c.RemoteAddr)
		c.Printf("ok\n")
	default:
		c.WriteHeader(405)
	}
}

// logFormatter writes "MMDD hh:mm:ss.mmm LEVEL file:line message" in UTC.
type logFormatter struct{}

func (f *logFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteString(entry.Time.UTC().Format("0102 15:04:05.000 "))
	switch {
	case entry.Level <= logrus.ErrorLevel:
		buf.WriteString("ERROR ")
	case entry.Level == logrus.WarnLevel:
		buf.WriteString("WARN ")
	default:
		buf.WriteString("INFO ")
	}
	if entry.Caller == nil {
		buf.WriteString("-")
	} else {
		buf.WriteString(filepath.Base(entry.Caller.File))
		buf.WriteString(":")
		buf.WriteString(strconv.Itoa(entry.Caller.Line))
	}
	buf.WriteString(" ")
	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
