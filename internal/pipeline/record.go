package pipeline

import (
	"github.com/jackzampolin/fundrecon/internal/numeric"
)

// Document is one input: an identifier, where it came from, and its pages.
type Document struct {
	ID    string
	Path  string
	Pages []string
}

// Record holds the values found in one document, keyed by catalog key.
// Keys that were not found are absent; Complete fills them with zero.
type Record struct {
	DocumentID string
	Path       string

	values map[string]numeric.Value
	raw    map[string]string
}

func newRecord(doc Document) Record {
	return Record{
		DocumentID: doc.ID,
		Path:       doc.Path,
		values:     make(map[string]numeric.Value),
		raw:        make(map[string]string),
	}
}

func (r *Record) set(key, raw string, v numeric.Value) {
	r.values[key] = v
	r.raw[key] = raw
}

// Found returns the value for key and whether its label was located.
func (r Record) Found(key string) (numeric.Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Raw returns the token captured for key before normalization.
func (r Record) Raw(key string) string {
	return r.raw[key]
}

// Value returns the value for key, or zero when it was not found.
func (r Record) Value(key string) numeric.Value {
	if v, ok := r.values[key]; ok {
		return v
	}
	return numeric.Zero()
}

// Len returns the number of keys that were found.
func (r Record) Len() int {
	return len(r.values)
}

// Complete returns one value per key, in the order given, with zero for
// keys that were not found.
func (r Record) Complete(keys []string) []numeric.Value {
	out := make([]numeric.Value, len(keys))
	for i, k := range keys {
		out[i] = r.Value(k)
	}
	return out
}
