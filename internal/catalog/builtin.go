package catalog

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed catalogs/*.yaml
var builtinFS embed.FS

// Builtins returns the names of the embedded catalogs, sorted.
func Builtins() []string {
	entries, err := builtinFS.ReadDir("catalogs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// BuiltinSource returns the YAML of an embedded catalog.
func BuiltinSource(name string) ([]byte, error) {
	data, err := builtinFS.ReadFile("catalogs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownCatalog, name, strings.Join(Builtins(), ", "))
	}
	return data, nil
}

// Builtin loads an embedded catalog by name.
func Builtin(name string) (*Catalog, error) {
	data, err := BuiltinSource(name)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("builtin catalog %s: %w", name, err)
	}
	return c, nil
}

// Resolve loads ref as a built-in catalog name, then as the name of a
// <ref>.yaml file in one of dirs, and finally as a file path.
func Resolve(ref string, dirs ...string) (*Catalog, error) {
	for _, name := range Builtins() {
		if name == ref {
			return Builtin(ref)
		}
	}
	if ref != "" && !strings.ContainsAny(ref, `/\`) && filepath.Ext(ref) == "" {
		for _, dir := range dirs {
			candidate := filepath.Join(dir, ref+".yaml")
			if _, err := os.Stat(candidate); err == nil {
				return LoadFile(candidate)
			}
		}
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("%w: %s is neither a built-in catalog nor a readable file", ErrUnknownCatalog, ref)
	}
	return LoadFile(ref)
}
