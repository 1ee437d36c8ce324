package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	log, closeLog, err := Setup(path, "debug")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info("hello", "answer", 42)
	log.Debug("visible at debug level")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines got %d: %q", len(lines), string(b))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line not json: %v", err)
	}
	if rec["msg"] != "hello" || rec["answer"] != float64(42) {
		t.Fatalf("record: %v", rec)
	}
}

func TestSetupLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	log, closeLog, err := Setup(path, "warn")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info("dropped")
	log.Warn("kept")
	_ = closeLog()
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "dropped") || !strings.Contains(string(b), "kept") {
		t.Fatalf("level filter: %q", string(b))
	}
}

func TestSetupAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	for i := 0; i < 2; i++ {
		log, closeLog, err := Setup(path, "info")
		if err != nil {
			t.Fatalf("setup %d: %v", i, err)
		}
		log.Info("run")
		_ = closeLog()
	}
	b, _ := os.ReadFile(path)
	if got := strings.Count(string(b), "run"); got != 2 {
		t.Fatalf("append across sessions: %d", got)
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if !strings.HasSuffix(p, "_bibrarian.log") && !strings.HasSuffix(p, string(filepath.Separator)+"bibrarian.log") {
		t.Fatalf("default path shape: %q", p)
	}
}

func TestNop(t *testing.T) {
	Nop().Info("goes nowhere")
}
