// Package scratch keeps intermediate migration artifacts for debugging.
package scratch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DirName is the parent directory created under the base dir.
const DirName = "bunny-stripe-migration"

// Dir is a per-run directory named by a random run id.
type Dir struct {
	RunID string
	Path  string
}

// New creates <base>/bunny-stripe-migration/<run id>. An empty base uses
// os.TempDir().
func New(base string) (*Dir, error) {
	if base == "" {
		base = os.TempDir()
	}
	runID := uuid.NewString()
	path := filepath.Join(base, DirName, runID)
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	return &Dir{RunID: runID, Path: path}, nil
}

// WriteJSON writes v indented to name inside the directory and returns the
// full path.
func (d *Dir) WriteJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(d.Path, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// Finish removes the directory unless keep is set or err is non-nil.
// It reports whether the directory was kept.
func (d *Dir) Finish(err error, keep bool) (bool, error) {
	if err != nil || keep {
		return true, nil
	}
	if rmErr := os.RemoveAll(d.Path); rmErr != nil {
		return true, fmt.Errorf("removing scratch dir: %w", rmErr)
	}
	return false, nil
}
