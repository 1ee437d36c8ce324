// Package editor implements the editor-side half of the key-selection
// handshake: run the interactive picker with a fresh output path, wait for
// it, and hand the emitted keys back to the caller.
//
// Earlier integrations ignored the picker's exit status and trusted bare
// file existence, which mistook stale files for fresh selections. Here the
// path is unique per invocation, the exit status gates the read, and the
// file is removed once consumed.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNoSelection reports that the picker exited cleanly without emitting a
// key file: the user selected nothing. Callers should treat this as a
// quiet no-op, not a failure.
var ErrNoSelection = errors.New("editor: no keys selected")

// Picker runs an external key-selection tool. The zero value is not usable;
// set Tool to the picker executable.
type Picker struct {
	// Tool is the picker executable. Args are inserted before the key-mode
	// flag and output path.
	Tool string
	Args []string

	// Stdin/Stdout/Stderr are handed to the picker so a TUI can take over
	// the terminal. Nil means inherit from this process.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	// TempDir overrides os.TempDir for the key file; used by tests.
	TempDir string
}

// KeyPath returns a fresh output path. Paths never repeat across
// invocations, so a file left behind by an earlier run can never be
// mistaken for this run's result.
func (p *Picker) KeyPath() string {
	dir := p.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "bibrarian-keys-"+uuid.NewString())
}

// Pick runs the tool synchronously and returns the raw content of the key
// file. The temp file is deleted after a successful read. A non-zero exit
// status is returned as an error without touching the file; a clean exit
// with no file is ErrNoSelection.
func (p *Picker) Pick(ctx context.Context) ([]byte, error) {
	if p.Tool == "" {
		return nil, fmt.Errorf("editor: no picker tool configured")
	}
	path := p.KeyPath()
	args := append(append([]string{}, p.Args...), "-k", path)
	cmd := exec.CommandContext(ctx, p.Tool, args...)
	cmd.Stdin = p.Stdin
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor: picker %s: %w", p.Tool, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSelection
		}
		return nil, fmt.Errorf("editor: read key file: %w", err)
	}
	_ = os.Remove(path)
	return b, nil
}
