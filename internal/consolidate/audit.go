package consolidate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// AuditRow records whether one key of one document was located or defaulted.
type AuditRow struct {
	Document string `csv:"document"`
	Path     string `csv:"path"`
	Key      string `csv:"key"`
	Found    bool   `csv:"found"`
	Value    string `csv:"value"`
}

// AuditRows lists every key of every column, in column then key order.
func (t *Table) AuditRows() []*AuditRow {
	rows := make([]*AuditRow, 0, len(t.Columns)*len(t.Keys))
	for _, c := range t.Columns {
		for i, key := range t.Keys {
			rows = append(rows, &AuditRow{
				Document: c.ID,
				Path:     c.Path,
				Key:      key,
				Found:    c.Found(i),
				Value:    c.Values[i].String(),
			})
		}
	}
	return rows
}

// WriteAudit writes the audit report with a header row.
func WriteAudit(w io.Writer, t *Table, opts CSVOptions) error {
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
	if err := gocsv.MarshalCSV(t.AuditRows(), gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write audit report: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return flush()
}
