package msgshot

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds daemon settings. All fields have working defaults; a missing
// config file is not an error.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`
	// DBPath is the bbolt database file holding per-guild themes.
	DBPath string `toml:"db_path"`
	// EmojiCacheDir holds fetched emoji PNGs.
	EmojiCacheDir string `toml:"emoji_cache_dir"`
	// LogFile is the rotating log destination; empty logs to stdout only.
	LogFile string `toml:"log_file"`
	// RenderCacheSize bounds the daemon's LRU of finished renders.
	RenderCacheSize int `toml:"render_cache_size"`
}

func DefaultConfig() Config {
	return Config{
		Listen:          ":8877",
		DBPath:          "msgshot.db",
		EmojiCacheDir:   "twemoji",
		LogFile:         "logs/msgshot.log",
		RenderCacheSize: 1024,
	}
}

// LoadConfig reads a TOML config file, filling unset fields with defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.RenderCacheSize <= 0 {
		cfg.RenderCacheSize = DefaultConfig().RenderCacheSize
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultConfig().Listen
	}
	return cfg, nil
}
