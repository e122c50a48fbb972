// Package consolidate folds per-document records into one wide table and
// writes it out: one row per catalog key, one column per document.
package consolidate

import (
	"sort"

	"github.com/jackzampolin/fundrecon/internal/numeric"
	"github.com/jackzampolin/fundrecon/internal/pipeline"
)

// DefaultIdentifierLabel heads the identifier row.
const DefaultIdentifierLabel = "Fund"

// Column is one document's values, in key order.
type Column struct {
	ID     string
	Path   string
	Values []numeric.Value
	found  []bool
}

// Found reports whether the value at row i was located rather than defaulted.
func (c Column) Found(i int) bool {
	return i >= 0 && i < len(c.found) && c.found[i]
}

// Table is the consolidated table. It holds no reference to the records it
// was built from.
type Table struct {
	IdentifierLabel string
	Keys            []string
	Columns         []Column
}

// Build creates a table from records. Every column has exactly one value per
// key, with zero for keys a document did not contain. Columns are ordered by
// document identifier, then by path.
func Build(keys []string, records []pipeline.Record, identifierLabel string) *Table {
	if identifierLabel == "" {
		identifierLabel = DefaultIdentifierLabel
	}

	t := &Table{
		IdentifierLabel: identifierLabel,
		Keys:            append([]string(nil), keys...),
		Columns:         make([]Column, 0, len(records)),
	}
	for _, rec := range records {
		col := Column{
			ID:     rec.DocumentID,
			Path:   rec.Path,
			Values: rec.Complete(keys),
			found:  make([]bool, len(keys)),
		}
		for i, k := range keys {
			_, col.found[i] = rec.Found(k)
		}
		t.Columns = append(t.Columns, col)
	}

	sort.SliceStable(t.Columns, func(i, j int) bool {
		a, b := t.Columns[i], t.Columns[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Path < b.Path
	})
	return t
}

// Rows renders the table as strings: the identifier row first, then one row
// per key.
func (t *Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Keys)+1)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, t.IdentifierLabel)
	for _, c := range t.Columns {
		header = append(header, c.ID)
	}
	rows = append(rows, header)

	for i, key := range t.Keys {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, key)
		for _, c := range t.Columns {
			row = append(row, c.Values[i].String())
		}
		rows = append(rows, row)
	}
	return rows
}

// Column returns the column of a document by identifier.
func (t *Table) Column(id string) (Column, bool) {
	for _, c := range t.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}
