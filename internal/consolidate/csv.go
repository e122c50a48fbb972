package consolidate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names the character encoding of written files.
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	Windows1252 Encoding = "windows-1252"
)

// DefaultDelimiter separates fields in CSV output.
const DefaultDelimiter = ';'

var bom = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding resolves an encoding by name.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(name))) {
	case "", UTF8, "utf8":
		return UTF8, nil
	case UTF8BOM, "utf8-bom":
		return UTF8BOM, nil
	case Windows1252, "cp1252":
		return Windows1252, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

// ParseDelimiter reads a single-character delimiter. "\t" and "tab" mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	Delimiter rune
	Encoding  Encoding
}

// encodeWriter wraps w so that text written to it is in enc. The returned
// flush must be called once writing is done.
func encodeWriter(w io.Writer, enc Encoding) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch enc {
	case "", UTF8:
		return w, noop, nil
	case UTF8BOM:
		if _, err := w.Write(bom); err != nil {
			return nil, nil, err
		}
		return w, noop, nil
	case Windows1252:
		// Characters outside the code page become '?' instead of failing the write.
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()))
		return tw, tw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

// WriteCSV writes the table rows as delimiter-separated text. There is no
// header beyond the identifier row.
func WriteCSV(w io.Writer, t *Table, opts CSVOptions) error {
	return writeRows(w, t.Rows(), opts)
}

func writeRows(w io.Writer, rows [][]string, opts CSVOptions) error {
	out, flush, err := encodeWriter(w, opts.Encoding)
	if err != nil {
		return err
	}
	buf := bufio.NewWriter(out)

	cw := csv.NewWriter(buf)
	cw.Comma = opts.Delimiter
	if cw.Comma == 0 {
		cw.Comma = DefaultDelimiter
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return flush()
}
