package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lyricard/lyricard/internal/app"
	"github.com/lyricard/lyricard/internal/artwork"
	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/config"
	"github.com/lyricard/lyricard/internal/logging"
	"github.com/lyricard/lyricard/internal/providers/itunes"
	"github.com/lyricard/lyricard/internal/providers/lrclib"
	"github.com/lyricard/lyricard/internal/tags"
	"github.com/lyricard/lyricard/internal/ui"
)

var version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Lyricard - Turn song lyrics into shareable cards

Usage: lyricard [options]

Options:
  -config string
        Path to config file (default: ~/.config/lyricard/config.toml)
  -version
        Print version and exit
  -theme string
        Override the UI theme (%s)
  -log-level string
        Log level: debug, info, warn, error (default: debug)

Diagnostics:
  -doctor
        Check configuration, fonts and export directory

Search:
  -query string
        Start with this search already submitted
  -file string
        Read artist and title from an audio file's tags

Examples:
  lyricard                                 # Start the wizard
  lyricard --doctor                        # Check setup
  lyricard --query "imagine john lennon"   # Jump straight to results
  lyricard --file ~/Music/song.mp3         # Search for a local track

`, strings.Join(ui.ThemeNames(), ", "))
	}

	cfgPath := flag.String("config", "", "")
	doctor := flag.Bool("doctor", false, "")
	showVersion := flag.Bool("version", false, "")
	theme := flag.String("theme", "", "")
	logLevel := flag.String("log-level", "debug", "")
	query := flag.String("query", "", "")
	file := flag.String("file", "", "")
	flag.Parse()

	if *showVersion {
		fmt.Println("lyricard", version)
		return
	}

	cfg, resolvedPath, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *theme != "" {
		if !ui.ValidTheme(*theme) {
			log.Fatalf("unknown theme %q (available: %s)", *theme, strings.Join(ui.ThemeNames(), ", "))
		}
		cfg.UI.Theme = *theme
	}
	logger, logFile, err := logging.Setup(logging.ParseLevel(*logLevel))
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	defer logFile.Close()
	logger.Info("starting lyricard", slog.String("config", resolvedPath), slog.String("version", version))

	if *doctor {
		runDoctor(cfg, resolvedPath, logger)
		return
	}

	initial := *query
	if *file != "" {
		q, err := tags.QueryFromFile(*file)
		if err != nil {
			logger.Error("read tags", slog.String("file", *file), slog.Any("err", err))
			log.Fatalf("read tags: %v", err)
		}
		initial = q
	}

	art, err := artwork.New(artwork.Config{
		CacheEntries: cfg.Artwork.CacheEntries,
		UserAgent:    cfg.Lyrics.UserAgent,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("artwork init", slog.Any("err", err))
		log.Fatalf("init artwork: %v", err)
	}

	model := app.New(cfg, app.Deps{
		Searcher: itunes.New(itunes.Config{
			BaseURL: cfg.Search.BaseURL,
			Entity:  cfg.Search.Entity,
			Limit:   cfg.Search.Limit,
			Logger:  logger,
		}),
		Lyrics: lrclib.New(lrclib.Config{
			BaseURL:   cfg.Lyrics.BaseURL,
			UserAgent: cfg.Lyrics.UserAgent,
			Logger:    logger,
		}),
		Artwork:      art,
		Sharer:       card.NewClipboardSharer(os.Stderr),
		Logger:       logger,
		InitialQuery: initial,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("run tui", slog.Any("err", err))
		log.Fatalf("tui: %v", err)
	}
}

func runDoctor(cfg *config.Config, path string, logger *slog.Logger) {
	fmt.Println("Lyricard doctor")
	fmt.Println("Config file:", configStatus(path))
	fmt.Printf("Search: %s (entity=%s, limit=%d)\n", cfg.Search.BaseURL, cfg.Search.Entity, cfg.Search.Limit)
	fmt.Printf("Lyrics: %s\n", cfg.Lyrics.BaseURL)

	if err := card.CheckFonts(); err != nil {
		fmt.Printf("Fonts: ERROR - %v\n", err)
	} else {
		fmt.Println("Fonts: OK")
	}

	if err := checkWritable(cfg.Export.Dir); err != nil {
		fmt.Printf("Export dir (%s): ERROR - %v\n", cfg.Export.Dir, err)
	} else {
		fmt.Printf("Export dir: OK (%s)\n", cfg.Export.Dir)
	}

	fmt.Printf("Artwork preview: %s\n", artwork.Resolve(cfg.PreviewProtocol(), os.Getenv))
	if card.NewClipboardSharer(os.Stderr).Available() {
		fmt.Println("Share: OK (OSC 52 clipboard)")
	} else {
		fmt.Println("Share: unavailable in this terminal")
	}

	if p, err := logging.Path(time.Now()); err == nil {
		fmt.Printf("Log file: %s\n", p)
	}
	logger.Info("doctor complete")
}

// configStatus reports whether the resolved config file exists.
func configStatus(path string) string {
	if path == "" {
		return "not found, using defaults"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("not found, using defaults (%s)", path)
		}
		return fmt.Sprintf("ERROR - %v", err)
	}
	return fmt.Sprintf("OK (%s)", path)
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".lyricard-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
