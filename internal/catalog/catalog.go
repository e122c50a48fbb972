// Package catalog holds the Table Schema Registry: which regions exist in a
// report, which tables live in them, and which line items each table holds.
//
// Catalogs are data. They are written as YAML, checked against an embedded
// JSON Schema and then compiled into regions, grammars and matchers. Two
// catalogs ship with the binary (see Builtin); others can be loaded from disk.
package catalog

import (
	"errors"
	"regexp"

	"github.com/jackzampolin/fundrecon/internal/locate"
	"github.com/jackzampolin/fundrecon/internal/numeric"
	"github.com/jackzampolin/fundrecon/internal/region"
)

// Sentinel errors for catalog loading.
var (
	// ErrInvalidCatalog is returned when a catalog fails schema validation or compilation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrDuplicateKey is returned when two line items produce the same output key.
	ErrDuplicateKey = errors.New("duplicate line-item key")

	// ErrUnknownCatalog is returned when a built-in catalog name is not known.
	ErrUnknownCatalog = errors.New("unknown catalog")
)

// DefaultIdentifier captures everything up to and including "fund" in a file name.
const DefaultIdentifier = `(.*?fund)`

// Catalog is a compiled registry of regions, tables and line items.
type Catalog struct {
	Name       string
	Policy     numeric.Policy
	Identifier *regexp.Regexp
	Regions    *region.Plan
	Tables     []Table

	grammars map[string]*locate.Grammar
	keys     []string
}

// Table is one financial table: a region, a grammar and the line items read
// from it with the same slot.
type Table struct {
	Name    string
	Region  string
	Grammar *locate.Grammar
	Slot    int
	Items   []Item
}

// Item is one line item. Key is the output row name.
type Item struct {
	Key     string
	Matcher *locate.Matcher
}

// Keys returns every output key in catalog order: table order, then item order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Table returns a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

// Grammar returns a named grammar.
func (c *Catalog) Grammar(name string) (*locate.Grammar, bool) {
	g, ok := c.grammars[name]
	return g, ok
}

// ItemCount returns the number of line items across all tables.
func (c *Catalog) ItemCount() int {
	return len(c.keys)
}
