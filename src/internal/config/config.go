// Package config loads bibrarian configuration: a JSON file discovered by
// walking up from the working directory, overridable by BIBRARIAN_*
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"bibrarian/src/internal/keys"
)

// DefaultFileName is the config file searched for from cwd upward.
const DefaultFileName = ".bibrarian.json"

const envPrefix = "BIBRARIAN_"

// ErrNotFound reports that no config file was discovered.
var ErrNotFound = errors.New("config: no configuration file found")

// RepoConfig describes one repository. Exactly one of Remote or Glob is set.
type RepoConfig struct {
	Remote  string `json:"remote,omitempty" koanf:"remote"`
	Glob    string `json:"glob,omitempty" koanf:"glob"`
	Enabled *bool  `json:"enabled,omitempty" koanf:"enabled"`
}

// IsEnabled defaults to true when the flag is omitted.
func (r RepoConfig) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

// LogConfig controls the file logger. The TUI owns the terminal, so logs
// only ever go to a file.
type LogConfig struct {
	Path  string `json:"path,omitempty" koanf:"path"`
	Level string `json:"level,omitempty" koanf:"level"`
}

// Config is the full bibrarian configuration.
type Config struct {
	RORepos       []RepoConfig `json:"ro_repos" koanf:"ro_repos"`
	RWRepos       []RepoConfig `json:"rw_repos" koanf:"rw_repos"`
	KeysDelimiter string       `json:"keys_delimiter,omitempty" koanf:"keys_delimiter"`
	Log           LogConfig    `json:"log,omitempty" koanf:"log"`

	// Source is the path the config was loaded from; empty for pure defaults.
	Source string `json:"-" koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"keys_delimiter": keys.DefaultDelimiter,
		"log.level":      "info",
	}
}

// Discover walks from dir up to the filesystem root looking for name and
// returns the first readable hit, or ErrNotFound.
func Discover(dir, name string) (string, error) {
	prefix, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(prefix, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			return "", ErrNotFound
		}
		prefix = parent
	}
}

// Load reads the config at path, layering defaults, the file, and
// environment overrides (BIBRARIAN_LOG__LEVEL=debug and similar).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			stripped := strings.TrimPrefix(key, envPrefix)
			return strings.ToLower(strings.ReplaceAll(stripped, "__", ".")), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects repo entries that name both or neither of remote/glob,
// and multi-target rw repos.
func (c *Config) Validate() error {
	for i, r := range c.RORepos {
		if err := validateRepo(r); err != nil {
			return fmt.Errorf("config: ro_repos[%d]: %w", i, err)
		}
	}
	for i, r := range c.RWRepos {
		if r.Remote != "" {
			return fmt.Errorf("config: rw_repos[%d]: remote repositories cannot be writable", i)
		}
		if strings.TrimSpace(r.Glob) == "" {
			return fmt.Errorf("config: rw_repos[%d]: glob is required", i)
		}
	}
	return nil
}

func validateRepo(r RepoConfig) error {
	hasRemote := strings.TrimSpace(r.Remote) != ""
	hasGlob := strings.TrimSpace(r.Glob) != ""
	if hasRemote == hasGlob {
		return errors.New("exactly one of remote or glob is required")
	}
	return nil
}

// Default returns the annotated starter configuration written by --gen-config.
func Default() *Config {
	on := true
	off := false
	return &Config{
		RORepos: []RepoConfig{
			{Remote: "dblp.org", Enabled: &on},
			{Glob: filepath.Join("path", "to", "lots", "of", "*.bib"), Enabled: &on},
			{Glob: filepath.Join("path", "to", "sample.bib"), Enabled: &off},
		},
		RWRepos: []RepoConfig{
			{Glob: "reference.bib", Enabled: &on},
		},
		KeysDelimiter: keys.DefaultDelimiter,
		Log:           LogConfig{Level: "info"},
	}
}

// WriteDefault writes the starter configuration as indented JSON.
func WriteDefault(path string) error {
	b, err := json.MarshalIndent(Default(), "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
