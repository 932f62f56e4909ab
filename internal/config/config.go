package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lyricard/lyricard/internal/artwork"
	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/providers/itunes"
	"github.com/lyricard/lyricard/internal/providers/lrclib"
	"github.com/lyricard/lyricard/internal/ui"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the config file.
const (
	EnvSearchURL = "LYRICARD_SEARCH_URL"
	EnvLyricsURL = "LYRICARD_LYRICS_URL"
	EnvExportDir = "LYRICARD_EXPORT_DIR"
	EnvTheme     = "LYRICARD_THEME"
)

// Config holds Lyricard runtime configuration loaded from TOML.
type Config struct {
	UI      UIConfig      `toml:"ui"`
	Search  SearchConfig  `toml:"search"`
	Lyrics  LyricsConfig  `toml:"lyrics"`
	Card    CardConfig    `toml:"card"`
	Export  ExportConfig  `toml:"export"`
	Artwork ArtworkConfig `toml:"artwork"`
}

type UIConfig struct {
	Theme   string `toml:"theme"`
	NoEmoji bool   `toml:"no_emoji"`
}

type SearchConfig struct {
	BaseURL string `toml:"base_url"`
	Entity  string `toml:"entity"`
	Limit   int    `toml:"limit"`
}

type LyricsConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// CardConfig is the customization the wizard starts from.
type CardConfig struct {
	Background string `toml:"background"` // "#RRGGBB" or "#RRGGBB..#RRGGBB"
	TextLight  bool   `toml:"text_light"`
	Font       string `toml:"font"`
	Size       string `toml:"size"`
	Effect     string `toml:"effect"`
}

type ExportConfig struct {
	Dir   string `toml:"dir"`
	Scale int    `toml:"scale"`
}

type ArtworkConfig struct {
	Enabled      bool   `toml:"enabled"`
	CacheEntries int    `toml:"cache_entries"`
	Preview      string `toml:"preview"` // auto, ansi, kitty, off
}

// Default returns the configuration used when no file exists.
func Default() Config {
	d := card.DefaultOptions()
	return Config{
		UI:     UIConfig{Theme: "rainbow"},
		Search: SearchConfig{BaseURL: itunes.DefaultBaseURL, Entity: itunes.DefaultEntity, Limit: itunes.DefaultLimit},
		Lyrics: LyricsConfig{BaseURL: lrclib.DefaultBaseURL, UserAgent: lrclib.DefaultUserAgent},
		Card: CardConfig{
			Background: d.Background.String(),
			TextLight:  d.TextLight,
			Font:       string(d.Font),
			Size:       string(d.Size),
			Effect:     string(d.Effect),
		},
		Export:  ExportConfig{Scale: card.ExportScale},
		Artwork: ArtworkConfig{Enabled: true, CacheEntries: artwork.DefaultCacheEntries, Preview: string(artwork.ProtocolAuto)},
	}
}

// dotenvPath is loaded before environment overrides are applied.
var dotenvPath = ".env"

// Load reads configuration from disk. If path is empty, a default OS-specific
// location is used. A missing file yields the defaults.
func Load(path string) (*Config, string, error) {
	cfgPath := path
	if cfgPath == "" {
		var err error
		cfgPath, err = defaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg := Default()
	data, err := os.ReadFile(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, cfgPath, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, cfgPath, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, cfgPath, fmt.Errorf("load %s: %w", dotenvPath, err)
	}
	applyEnv(&cfg, os.Getenv)
	if err := applyDefaults(&cfg); err != nil {
		return nil, cfgPath, err
	}

	if err := Validate(cfg); err != nil {
		return nil, cfgPath, err
	}
	return &cfg, cfgPath, nil
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lyricard", "config.toml"), nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvSearchURL); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := getenv(EnvLyricsURL); v != "" {
		cfg.Lyrics.BaseURL = v
	}
	if v := getenv(EnvExportDir); v != "" {
		cfg.Export.Dir = v
	}
	if v := getenv(EnvTheme); v != "" {
		cfg.UI.Theme = v
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "rainbow"
	}
	if cfg.Search.Entity == "" {
		cfg.Search.Entity = itunes.DefaultEntity
	}
	if cfg.Search.Limit == 0 {
		cfg.Search.Limit = itunes.DefaultLimit
	}
	if cfg.Lyrics.UserAgent == "" {
		cfg.Lyrics.UserAgent = lrclib.DefaultUserAgent
	}
	if cfg.Export.Scale == 0 {
		cfg.Export.Scale = card.ExportScale
	}
	if cfg.Artwork.CacheEntries == 0 {
		cfg.Artwork.CacheEntries = artwork.DefaultCacheEntries
	}
	dir, err := expandHome(cfg.Export.Dir)
	if err != nil {
		return fmt.Errorf("export.dir: %w", err)
	}
	if dir == "" {
		dir = defaultExportDir()
	}
	cfg.Export.Dir = dir
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// defaultExportDir prefers ~/Downloads and falls back to the working directory.
func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dl := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dl); err == nil && info.IsDir() {
		return dl
	}
	return "."
}

// Validate performs semantic validation of config.
func Validate(cfg Config) error {
	if !ui.ValidTheme(cfg.UI.Theme) {
		return fmt.Errorf("ui.theme %q unknown (available: %s)", cfg.UI.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	if err := validateURL("search.base_url", cfg.Search.BaseURL); err != nil {
		return err
	}
	if err := validateURL("lyrics.base_url", cfg.Lyrics.BaseURL); err != nil {
		return err
	}
	if cfg.Search.Limit < 1 || cfg.Search.Limit > 200 {
		return errors.New("search.limit must be 1-200")
	}
	if cfg.Export.Scale < 1 || cfg.Export.Scale > 4 {
		return errors.New("export.scale must be 1-4")
	}
	if cfg.Artwork.CacheEntries < 0 {
		return errors.New("artwork.cache_entries must not be negative")
	}
	if _, err := artwork.ParseProtocol(cfg.Artwork.Preview); err != nil {
		return fmt.Errorf("artwork.preview: %w", err)
	}
	if _, err := cfg.Card.Options(); err != nil {
		return fmt.Errorf("card: %w", err)
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}

// Options converts the card section into render options.
func (c CardConfig) Options() (card.Options, error) {
	bg, err := card.ParseBackground(c.Background)
	if err != nil {
		return card.Options{}, err
	}
	o := card.Options{
		Background: bg,
		TextLight:  c.TextLight,
		Font:       card.FontFamily(c.Font),
		Size:       card.FontSize(c.Size),
		Effect:     card.TextEffect(c.Effect),
	}
	return o, o.Validate()
}

// PreviewProtocol is the configured preview protocol, or ProtocolOff when
// artwork is disabled.
func (c Config) PreviewProtocol() artwork.Protocol {
	if !c.Artwork.Enabled {
		return artwork.ProtocolOff
	}
	p, err := artwork.ParseProtocol(c.Artwork.Preview)
	if err != nil {
		return artwork.ProtocolAuto
	}
	return p
}
