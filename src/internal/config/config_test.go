package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := writeConfig(t, root, `{"ro_repos": [], "rw_repos": []}`)

	got, err := Discover(nested, DefaultFileName)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got != want {
		t.Fatalf("discover: got %q want %q", got, want)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	if _, err := Discover(t.TempDir(), "definitely-not-here.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{
        "ro_repos": [
            {"remote": "dblp.org"},
            {"glob": "papers/*.bib", "enabled": false}
        ],
        "rw_repos": [{"glob": "reference.bib"}],
        "keys_delimiter": ",",
        "log": {"level": "debug"}
    }`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.RORepos) != 2 || len(cfg.RWRepos) != 1 {
		t.Fatalf("repos: %+v", cfg)
	}
	if cfg.RORepos[0].Remote != "dblp.org" || !cfg.RORepos[0].IsEnabled() {
		t.Fatalf("remote repo: %+v", cfg.RORepos[0])
	}
	if cfg.RORepos[1].IsEnabled() {
		t.Fatalf("enabled=false must stick")
	}
	if cfg.KeysDelimiter != "," || cfg.Log.Level != "debug" {
		t.Fatalf("scalars: %+v", cfg)
	}
	if cfg.Source != path {
		t.Fatalf("source: %q", cfg.Source)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"ro_repos": [{"glob": "a.bib"}], "rw_repos": [], "log": {"level": "info"}}`)
	t.Setenv("BIBRARIAN_LOG__LEVEL", "debug")
	t.Setenv("BIBRARIAN_KEYS_DELIMITER", ";")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("env must override file: %q", cfg.Log.Level)
	}
	if cfg.KeysDelimiter != ";" {
		t.Fatalf("env delimiter: %q", cfg.KeysDelimiter)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"ro_repos": [{"glob": "a.bib"}], "rw_repos": []}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.KeysDelimiter != "\n" || cfg.Log.Level != "info" {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []string{
		`{"ro_repos": [{"remote": "dblp.org", "glob": "x.bib"}], "rw_repos": []}`,
		`{"ro_repos": [{}], "rw_repos": []}`,
		`{"ro_repos": [], "rw_repos": [{"remote": "dblp.org"}]}`,
		`{"ro_repos": [], "rw_repos": [{"glob": "  "}]}`,
	}
	for _, content := range cases {
		dir := t.TempDir()
		path := writeConfig(t, dir, content)
		if _, err := Load(path); err == nil {
			t.Fatalf("expected validation error for %s", content)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config must load: %v", err)
	}
	if len(cfg.RORepos) == 0 || len(cfg.RWRepos) == 0 {
		t.Fatalf("starter config too bare: %+v", cfg)
	}
	if cfg.RORepos[0].Remote != "dblp.org" {
		t.Fatalf("starter remote: %+v", cfg.RORepos[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
