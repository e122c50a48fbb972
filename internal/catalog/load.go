package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/fundrecon/internal/locate"
	"github.com/jackzampolin/fundrecon/internal/numeric"
	"github.com/jackzampolin/fundrecon/internal/region"
)

//go:embed catalog.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// File is the on-disk shape of a catalog.
type File struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Locale      string            `yaml:"locale"`
	Identifier  string            `yaml:"identifier,omitempty"`
	Grammars    map[string]string `yaml:"grammars"`
	Regions     []RegionDef       `yaml:"regions,omitempty"`
	Tables      []TableDef        `yaml:"tables"`
}

// RegionDef declares a named region.
type RegionDef struct {
	Name     string `yaml:"name"`
	Parent   string `yaml:"parent,omitempty"`
	Boundary string `yaml:"boundary"`
}

// TableDef declares a table and its line items.
type TableDef struct {
	Name    string    `yaml:"name"`
	Region  string    `yaml:"region,omitempty"`
	Grammar string    `yaml:"grammar"`
	Slot    int       `yaml:"slot,omitempty"`
	Items   []ItemDef `yaml:"items"`
}

// ItemDef declares a line item by regex label or by literal text.
type ItemDef struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// Load reads, validates and compiles a catalog.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates data against the catalog schema and compiles it.
func Parse(data []byte) (*Catalog, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return Compile(&f)
}

// Validate checks the structure of a YAML catalog without compiling patterns.
func Validate(data []byte) error {
	schema, err := catalogSchema()
	if err != nil {
		return err
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	// Round-trip through JSON so the validator sees JSON types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return nil
}

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load catalog schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("catalog.schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile catalog schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Compile turns a decoded catalog file into a Catalog. Every pattern is
// compiled here so a loaded catalog cannot fail at extraction time.
func Compile(f *File) (*Catalog, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, fmt.Sprintf(format, args...))
	}

	policy, err := numeric.ParsePolicy(f.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	idPattern := f.Identifier
	if idPattern == "" {
		idPattern = DefaultIdentifier
	}
	identifier, err := regexp.Compile(idPattern)
	if err != nil {
		return nil, invalid("identifier %q: %v", idPattern, err)
	}
	if identifier.NumSubexp() < 1 {
		return nil, invalid("identifier %q has no capture group", idPattern)
	}

	c := &Catalog{
		Name:       f.Name,
		Policy:     policy,
		Identifier: identifier,
		grammars:   make(map[string]*locate.Grammar, len(f.Grammars)),
	}

	for name, pattern := range f.Grammars {
		g, err := locate.CompileGrammar(name, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		c.grammars[name] = g
	}

	specs := make([]region.Spec, 0, len(f.Regions))
	for _, r := range f.Regions {
		b, err := region.CompileBoundary(r.Boundary)
		if err != nil {
			return nil, fmt.Errorf("%w: region %q: %w", ErrInvalidCatalog, r.Name, err)
		}
		specs = append(specs, region.Spec{Name: r.Name, Parent: r.Parent, Boundary: b})
	}
	c.Regions, err = region.NewPlan(specs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	tables := make(map[string]bool, len(f.Tables))
	keys := make(map[string]string)
	for _, td := range f.Tables {
		if tables[td.Name] {
			return nil, invalid("table %q defined twice", td.Name)
		}
		tables[td.Name] = true

		regionName := td.Region
		if regionName == "" {
			regionName = region.Document
		}
		if !c.Regions.Has(regionName) {
			return nil, invalid("table %q uses unknown region %q", td.Name, td.Region)
		}

		g, ok := c.grammars[td.Grammar]
		if !ok {
			return nil, invalid("table %q uses unknown grammar %q", td.Name, td.Grammar)
		}
		if td.Slot < 0 || td.Slot >= g.Captures() {
			return nil, fmt.Errorf("%w: table %q: %w: slot %d, grammar %q captures %d",
				ErrInvalidCatalog, td.Name, locate.ErrSlotOutOfRange, td.Slot, g.Name(), g.Captures())
		}

		t := Table{Name: td.Name, Region: regionName, Grammar: g, Slot: td.Slot}
		for _, it := range td.Items {
			if prev, dup := keys[it.Key]; dup {
				return nil, fmt.Errorf("%w: %w: %q in tables %q and %q",
					ErrInvalidCatalog, ErrDuplicateKey, it.Key, prev, td.Name)
			}
			keys[it.Key] = td.Name

			label := it.Label
			if label == "" {
				label = LiteralLabel(it.Text)
			}
			m, err := locate.NewMatcher(label, g)
			if err != nil {
				return nil, fmt.Errorf("%w: table %q item %q: %w", ErrInvalidCatalog, td.Name, it.Key, err)
			}
			t.Items = append(t.Items, Item{Key: it.Key, Matcher: m})
			c.keys = append(c.keys, it.Key)
		}
		c.Tables = append(c.Tables, t)
	}

	return c, nil
}

// LiteralLabel quotes a phrase so it matches literally, with any run of
// whitespace between words.
func LiteralLabel(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}
