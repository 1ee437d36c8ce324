// Package logging configures the file-backed structured logger. The TUI
// owns the terminal, so nothing is ever logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// DefaultPath returns the per-user default log file, mirroring the
// tool's historical /tmp/<user>_bibrarian.log location.
func DefaultPath() string {
	name := "bibrarian"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username + "_bibrarian"
	}
	return filepath.Join(os.TempDir(), name+".log")
}

// ParseLevel maps a config string to a slog level; unknown strings mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup opens (appending) the log file and returns a JSON logger plus a
// close func.
func Setup(path, level string) (*slog.Logger, func() error, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h), f.Close, nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
