// Package workspace encapsulates path knowledge for a scenedeck workspace:
// the defaults env file, the generated-scenes root, and the optional
// scenedeck.yaml configuration.
package workspace

import (
	"os"
	"path/filepath"
)

// Dir is a value object that resolves paths within a workspace root. No I/O
// is performed at construction.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path, converted to an absolute path.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute workspace root.
func (d Dir) Root() string { return d.root }

// EnvFilePath returns the path to the .scenedeck.env defaults file.
func (d Dir) EnvFilePath() string { return filepath.Join(d.root, ".scenedeck.env") }

// ConfigPath returns the path to the optional scenedeck.yaml config.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "scenedeck.yaml") }

// ScenesRoot returns the directory the pipeline writes scene runs into.
func (d Dir) ScenesRoot() string { return filepath.Join(d.root, "data", "scenes") }

// ConnectorScript returns the path to the Unity connector script, if the
// workspace carries one.
func (d Dir) ConnectorScript() string { return filepath.Join(d.root, "connect_to_unity.py") }

// Exists reports whether the workspace root exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
