// Package render prints command results as text, YAML or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DefaultFormat is used when no --output flag is given.
const DefaultFormat = FormatText

// ParseFormat resolves the --output flag value.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, yaml or json)", name)
	}
}

// Texter is implemented by results with a human-readable rendering.
// Values that do not implement it fall back to YAML in text mode.
type Texter interface {
	WriteText(w io.Writer) error
}

// Printer writes results to a fixed writer in one format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a printer. An empty format means DefaultFormat.
func NewPrinter(w io.Writer, format Format) *Printer {
	if format == "" {
		format = DefaultFormat
	}
	return &Printer{w: w, format: format}
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// Structured reports whether output is machine-readable, in which case
// commands suppress progress chatter.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

// Print renders data.
func (p *Printer) Print(data any) error {
	return To(p.w, p.format, data)
}

// Printf writes a human-facing line; it is a no-op in structured mode.
func (p *Printer) Printf(format string, args ...any) {
	if p.Structured() {
		return
	}
	fmt.Fprintf(p.w, format, args...)
}

// To writes data to w in the specified format.
func To(w io.Writer, format Format, data any) error {
	switch format {
	case FormatText:
		if t, ok := data.(Texter); ok {
			return t.WriteText(w)
		}
		return To(w, FormatYAML, data)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
