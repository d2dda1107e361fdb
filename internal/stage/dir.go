// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage persists pipeline results: per-run directories of phase
// files for inspection, and a SQLite archive of finished runs.
package stage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ErrInvalidName reports a run ID or file name that would escape the
// results directory.
var ErrInvalidName = errors.New("invalid staging name")

// Dir writes phase results under Root/<run id>/.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// RunDir returns the directory holding runID's files.
func (d *Dir) RunDir(runID string) string {
	return filepath.Join(d.Root, runID)
}

func (d *Dir) path(runID, name string) (string, error) {
	for _, s := range []string{runID, name} {
		if s == "" || s == "." || s == ".." || filepath.Base(s) != s {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, s)
		}
	}
	return filepath.Join(d.Root, runID, name), nil
}

// StagePhase writes v as <phase>.yaml in the run directory.
func (d *Dir) StagePhase(ctx context.Context, runID, phase string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", phase, err)
	}
	return d.StageFile(ctx, runID, phase+".yaml", data)
}

// StageFile writes data as name in the run directory, creating it if needed.
func (d *Dir) StageFile(ctx context.Context, runID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(runID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// LoadPhase reads <phase>.yaml from the run directory into v.
func (d *Dir) LoadPhase(runID, phase string, v any) error {
	path, err := d.path(runID, phase+".yaml")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
