package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Setup creates a slog.Logger that writes to a dated log file in the user
// state directory. The caller is responsible for closing the file.
func Setup(level slog.Level) (*slog.Logger, *os.File, error) {
	path, err := Path(time.Now())
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.Int("pid", os.Getpid())), f, nil
}

// Path returns the log file used on day t.
func Path(t time.Time) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", fmt.Errorf("state dir: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("lyricard-%s.log", t.Format("20060102"))), nil
}

// StateDir returns the lyricard state directory (~/.config/lyricard/state).
func StateDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lyricard", "state"), nil
}

// ParseLevel maps a level name to slog.Level, defaulting to debug.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelDebug
	}
	return l
}
