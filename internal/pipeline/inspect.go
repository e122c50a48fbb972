package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/locate"
	"github.com/jackzampolin/fundrecon/internal/region"
)

// Report explains how a document was read: which regions were carved and
// which line items were found or defaulted.
type Report struct {
	Document string         `json:"document" yaml:"document"`
	Path     string         `json:"path,omitempty" yaml:"path,omitempty"`
	Catalog  string         `json:"catalog" yaml:"catalog"`
	Chars    int            `json:"chars" yaml:"chars"`
	Found    int            `json:"found" yaml:"found"`
	Total    int            `json:"total" yaml:"total"`
	Regions  []RegionReport `json:"regions" yaml:"regions"`
	Tables   []TableReport  `json:"tables" yaml:"tables"`
}

// RegionReport describes one carved region.
type RegionReport struct {
	Name   string `json:"name" yaml:"name"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Chars  int    `json:"chars" yaml:"chars"`
	Found  bool   `json:"found" yaml:"found"`
}

// TableReport describes the items of one table.
type TableReport struct {
	Name   string       `json:"name" yaml:"name"`
	Region string       `json:"region" yaml:"region"`
	Found  int          `json:"found" yaml:"found"`
	Items  []ItemReport `json:"items" yaml:"items"`
}

// ItemReport is the outcome for one key.
type ItemReport struct {
	Key   string `json:"key" yaml:"key"`
	Found bool   `json:"found" yaml:"found"`
	Raw   string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Value string `json:"value" yaml:"value"`
}

// Inspect processes doc like Process and reports per-region and per-item
// outcomes.
func (p *Pipeline) Inspect(doc Document) Report {
	rep := Report{
		Document: doc.ID,
		Path:     doc.Path,
		Catalog:  p.catalog.Name,
		Total:    p.catalog.ItemCount(),
	}

	var current *TableReport
	regions := p.walk(doc, func(t *catalog.Table, item catalog.Item, res locate.Result) {
		if current == nil || current.Name != t.Name {
			rep.Tables = append(rep.Tables, TableReport{Name: t.Name, Region: t.Region})
			current = &rep.Tables[len(rep.Tables)-1]
		}
		ir := ItemReport{Key: item.Key, Found: res.Found, Raw: res.Raw, Value: res.Value.String()}
		if res.Found {
			current.Found++
			rep.Found++
		}
		current.Items = append(current.Items, ir)
	})

	rep.Chars = len(regions.Get(region.Document))
	for _, s := range p.catalog.Regions.Specs() {
		text := regions.Get(s.Name)
		rep.Regions = append(rep.Regions, RegionReport{
			Name:   s.Name,
			Parent: s.Parent,
			Chars:  len(text),
			Found:  text != "",
		})
	}
	return rep
}

// WriteText prints the report as aligned columns: regions first, then every
// item with its value, marking defaulted items with "-".
func (r Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s (%s): %d of %d items found, %d chars\n\n", r.Document, r.Catalog, r.Found, r.Total, r.Chars)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tPARENT\tCHARS\tFOUND")
	for _, reg := range r.Regions {
		parent := reg.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", reg.Name, parent, reg.Chars, reg.Found)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range r.Tables {
		fmt.Fprintf(w, "\n%s [%s] %d/%d\n", t.Name, t.Region, t.Found, len(t.Items))
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, item := range t.Items {
			mark := "-"
			if item.Found {
				mark = "+"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", mark, item.Key, item.Value)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
