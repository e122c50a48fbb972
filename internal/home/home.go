// Package home locates the fundrecon home directory, which holds the user's
// config file and their own table catalogs.
package home

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultDirName is the default name for the fundrecon home directory.
	DefaultDirName = ".fundrecon"

	// CatalogsDirName is the subdirectory for user catalogs.
	CatalogsDirName = "catalogs"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	catalogExt = ".yaml"
)

// Dir represents the fundrecon home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.fundrecon).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// CatalogsDir returns the directory searched for catalogs by name.
func (d *Dir) CatalogsDir() string {
	return filepath.Join(d.path, CatalogsDirName)
}

// CatalogPath returns where a user catalog called name is stored.
func (d *Dir) CatalogPath(name string) string {
	return filepath.Join(d.CatalogsDir(), name+catalogExt)
}

// Catalogs returns the names of the user catalogs, sorted. A missing
// catalogs directory holds no catalogs.
func (d *Dir) Catalogs() ([]string, error) {
	entries, err := os.ReadDir(d.CatalogsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalogs directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != catalogExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), catalogExt))
	}
	sort.Strings(names)
	return names, nil
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create catalogs directory (this also creates the parent)
	if err := os.MkdirAll(d.CatalogsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create catalogs directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
