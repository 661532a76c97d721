// Package manifest handles substrate.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a substrate.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Run     Run         `toml:"run"`
	Cache   CacheConfig `toml:"cache"`

	// Dir is the directory containing the substrate.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Run configures the program to execute and the engine to run it on.
type Run struct {
	// Entry is the source file to run, relative to the manifest directory.
	Entry string `toml:"entry"`

	// Language selects the front end: a built-in name ("slate", "pico")
	// or a path to a schema .toml file.
	Language string `toml:"language"`

	// Engine selects the execution strategy: "tree" for direct node
	// evaluation, "canonical" for the instruction executor. Schema-defined
	// languages always run canonically.
	Engine string `toml:"engine"`

	// Backends names the capability backends to register, in resolution
	// order for bare selectors.
	Backends []string `toml:"backends"`
}

// CacheConfig configures the compile cache.
type CacheConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// Load parses a substrate.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "substrate.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a substrate.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "substrate.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Run.Language == "" {
		m.Run.Language = "slate"
	}
	if m.Run.Engine == "" {
		m.Run.Engine = "tree"
	}
	if len(m.Run.Backends) == 0 {
		m.Run.Backends = []string{"console", "strings", "math"}
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".substrate", "cache.db")
	}
}

// Validate rejects manifests that name an unknown engine.
func (m *Manifest) Validate() error {
	switch m.Run.Engine {
	case "tree", "canonical":
	default:
		return fmt.Errorf("substrate.toml: unknown engine %q", m.Run.Engine)
	}
	if m.Run.Entry == "" {
		return fmt.Errorf("substrate.toml: run.entry is required")
	}
	return nil
}

// EntryPath returns the absolute path of the entry source file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir, m.Run.Entry)
}

// CachePath returns the absolute path of the compile cache database.
func (m *Manifest) CachePath() string {
	return filepath.Join(m.Dir, m.Cache.Path)
}
