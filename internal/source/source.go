// Package source finds input documents, names them and reads their pages.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Sentinel errors for document sources.
var (
	// ErrNoIdentifier is returned when a file name does not match the identifier pattern.
	ErrNoIdentifier = errors.New("no document identifier in file name")

	// ErrUnsupportedFormat is returned when no reader handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrUnreadable is returned when a reader cannot open or parse a document.
	ErrUnreadable = errors.New("unreadable document")
)

// DefaultExtensions is the extension filter used when none is configured.
var DefaultExtensions = []string{".pdf"}

// Discover lists the files directly inside dir whose extension is in exts,
// compared case-insensitively. Paths are returned sorted.
func Discover(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[normalizeExt(e)] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Identifier derives a document identifier from the base name of path: the
// first capture group of the first match of pattern.
func Identifier(pattern *regexp.Regexp, path string) (string, error) {
	name := filepath.Base(path)
	m := pattern.FindStringSubmatch(name)
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("%w: %q does not match %s", ErrNoIdentifier, name, pattern)
	}
	return m[1], nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
