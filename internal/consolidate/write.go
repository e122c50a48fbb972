package consolidate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format by name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// Options configures WriteFile.
type Options struct {
	Format    Format
	Delimiter rune
	Encoding  Encoding
	Sheet     string
}

// Write writes t to w in the configured format.
func Write(w io.Writer, t *Table, opts Options) error {
	switch opts.Format {
	case "", FormatCSV:
		return WriteCSV(w, t, CSVOptions{Delimiter: opts.Delimiter, Encoding: opts.Encoding})
	case FormatXLSX:
		return WriteXLSX(w, t, opts.Sheet)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// WriteFile writes t to path. The file is written to a temporary name and
// renamed into place, so readers never see a partial table.
func WriteFile(path string, t *Table, opts Options) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, t, opts)
	})
}

// WriteAuditFile writes the audit report for t to path.
func WriteAuditFile(path string, t *Table, opts CSVOptions) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteAudit(w, t, opts)
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
