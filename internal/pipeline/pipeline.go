// Package pipeline runs one document through a catalog: flatten the pages,
// carve regions parent-first, then locate every line item of every table in
// that table's region.
//
// Each call works on fresh per-document state. The catalog is shared and
// read-only, so one Pipeline may process many documents concurrently.
package pipeline

import (
	"errors"
	"log/slog"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/locate"
	"github.com/jackzampolin/fundrecon/internal/region"
)

// Config configures a Pipeline.
type Config struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// Pipeline extracts records from documents.
type Pipeline struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a pipeline for a catalog.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("pipeline requires a catalog")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		catalog: cfg.Catalog,
		logger:  logger.With("catalog", cfg.Catalog.Name),
	}, nil
}

// Catalog returns the catalog the pipeline extracts with.
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Process extracts one record from doc. Absent regions and labels are not
// errors; they leave keys unset in the record.
func (p *Pipeline) Process(doc Document) Record {
	rec := newRecord(doc)
	p.walk(doc, func(t *catalog.Table, item catalog.Item, res locate.Result) {
		if res.Found {
			rec.set(item.Key, res.Raw, res.Value)
		}
	})
	return rec
}

// walk carves doc and calls visit once for every item of every table, in
// catalog order.
func (p *Pipeline) walk(doc Document, visit func(*catalog.Table, catalog.Item, locate.Result)) region.Regions {
	logger := p.logger.With("document", doc.ID)
	regions := p.catalog.Regions.Carve(Flatten(doc.Pages))

	for i := range p.catalog.Tables {
		t := &p.catalog.Tables[i]
		text := regions.Get(t.Region)
		if text == "" {
			logger.Debug("region absent, table defaulted", "table", t.Name, "region", t.Region)
		}

		for _, item := range t.Items {
			res, err := locate.Locate(text, item.Matcher, t.Slot, p.catalog.Policy)
			if err != nil {
				logger.Warn("unreadable figure, treating as absent", "table", t.Name, "key", item.Key, "token", res.Raw, "error", err)
				res = locate.Result{Raw: res.Raw}
			}
			visit(t, item, res)
		}
	}
	return regions
}
