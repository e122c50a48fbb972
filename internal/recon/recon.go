// Package recon runs a reconciliation: it discovers the annual reports in a
// directory, extracts every catalog line item from each one and writes the
// consolidated table.
package recon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/consolidate"
	"github.com/jackzampolin/fundrecon/internal/jobs"
	"github.com/jackzampolin/fundrecon/internal/pipeline"
	"github.com/jackzampolin/fundrecon/internal/source"
)

var (
	// ErrNoDocuments is returned when the input directory holds no documents
	// with a configured extension. No output is written.
	ErrNoDocuments = errors.New("no input documents")

	// ErrAborted is returned when a document fails in strict mode.
	ErrAborted = errors.New("run aborted")
)

// Request contains the parameters for one reconciliation run.
type Request struct {
	Catalog    *catalog.Catalog
	InputDir   string
	Extensions []string         // Empty means source.DefaultExtensions
	Identifier *regexp.Regexp   // Overrides the catalog's identifier pattern
	Readers    *source.Registry // Nil means source.DefaultRegistry
	Workers    int              // 0 = one per CPU

	// Strict aborts the run on the first document that cannot be identified
	// or read. Otherwise such documents are skipped and reported.
	Strict bool

	OutputPath      string
	Output          consolidate.Options
	IdentifierLabel string
	AuditPath       string // Empty = no audit report

	Logger *slog.Logger
}

// Skip records a document excluded from the run.
type Skip struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// DocumentSummary describes one extracted document.
type DocumentSummary struct {
	ID    string `json:"id" yaml:"id"`
	Path  string `json:"path" yaml:"path"`
	Found int    `json:"found" yaml:"found"` // Keys located in the document; the rest are zero
}

// Summary is the result of a run.
type Summary struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Catalog    string            `json:"catalog" yaml:"catalog"`
	InputDir   string            `json:"input_dir" yaml:"input_dir"`
	Keys       int               `json:"keys" yaml:"keys"`
	Discovered int               `json:"discovered" yaml:"discovered"`
	Documents  []DocumentSummary `json:"documents" yaml:"documents"`
	Skipped    []Skip            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Output     string            `json:"output" yaml:"output"`
	Audit      string            `json:"audit,omitempty" yaml:"audit,omitempty"`
	Duration   string            `json:"duration" yaml:"duration"`
}

// WriteText prints a short human-readable summary.
func (s *Summary) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "run %s: %d of %d documents extracted with catalog %q (%d keys) in %s\n",
		s.RunID, len(s.Documents), s.Discovered, s.Catalog, s.Keys, s.Duration)
	for _, skip := range s.Skipped {
		fmt.Fprintf(w, "  skipped %s: %s\n", filepath.Base(skip.Path), skip.Reason)
	}
	fmt.Fprintf(w, "wrote %s\n", s.Output)
	if s.Audit != "" {
		fmt.Fprintf(w, "wrote %s\n", s.Audit)
	}
	return nil
}

// Run performs one reconciliation.
func Run(ctx context.Context, req Request) (*Summary, error) {
	start := time.Now()
	if req.Catalog == nil {
		return nil, fmt.Errorf("no catalog provided")
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("no output path provided")
	}

	runID := uuid.New().String()
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	paths, err := source.Discover(req.InputDir, req.Extensions)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, req.InputDir)
	}
	logger.Info("starting run", "catalog", req.Catalog.Name, "input_dir", req.InputDir, "documents", len(paths))

	p, err := pipeline.New(pipeline.Config{Catalog: req.Catalog, Logger: logger})
	if err != nil {
		return nil, err
	}

	identifier := req.Identifier
	if identifier == nil {
		identifier = req.Catalog.Identifier
	}
	readers := req.Readers
	if readers == nil {
		readers = source.DefaultRegistry(logger)
	}

	units := make([]jobs.WorkUnit[pipeline.Record], len(paths))
	for i, path := range paths {
		units[i] = jobs.WorkUnit[pipeline.Record]{
			ID: path,
			Task: func(ctx context.Context) (pipeline.Record, error) {
				id, err := source.Identifier(identifier, path)
				if err != nil {
					return pipeline.Record{}, err
				}
				pages, err := readers.Read(ctx, path)
				if err != nil {
					return pipeline.Record{}, err
				}
				return p.Process(pipeline.Document{ID: id, Path: path, Pages: pages}), nil
			},
		}
	}

	pool := jobs.NewCPUPool(jobs.CPUPoolConfig{
		Name:        "extract",
		Logger:      logger,
		WorkerCount: req.Workers,
		StopOnError: req.Strict,
	})
	results, err := jobs.Run(ctx, pool, units)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Error("run aborted", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAborted, err)
	}

	summary := &Summary{
		RunID:      runID,
		Catalog:    req.Catalog.Name,
		InputDir:   req.InputDir,
		Keys:       len(req.Catalog.Keys()),
		Discovered: len(paths),
		Documents:  make([]DocumentSummary, 0, len(results)),
	}
	records := make([]pipeline.Record, 0, len(results))
	for _, res := range results {
		if !res.Success {
			logger.Warn("skipping document", "path", res.WorkUnitID, "error", res.Error)
			summary.Skipped = append(summary.Skipped, Skip{Path: res.WorkUnitID, Reason: res.Error.Error()})
			continue
		}
		rec := res.Output
		logger.Debug("document extracted", "document", rec.DocumentID, "found", rec.Len(), "keys", summary.Keys)
		records = append(records, rec)
		summary.Documents = append(summary.Documents, DocumentSummary{ID: rec.DocumentID, Path: rec.Path, Found: rec.Len()})
	}

	table := consolidate.Build(req.Catalog.Keys(), records, req.IdentifierLabel)
	opts := req.Output
	if opts.Sheet == "" {
		opts.Sheet = req.Catalog.Name
	}
	if err := consolidate.WriteFile(req.OutputPath, table, opts); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", req.OutputPath, err)
	}
	summary.Output = req.OutputPath

	if req.AuditPath != "" {
		auditOpts := consolidate.CSVOptions{Delimiter: opts.Delimiter, Encoding: opts.Encoding}
		if err := consolidate.WriteAuditFile(req.AuditPath, table, auditOpts); err != nil {
			return nil, fmt.Errorf("failed to write audit report %s: %w", req.AuditPath, err)
		}
		summary.Audit = req.AuditPath
	}

	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	logger.Info("run complete",
		"documents", len(summary.Documents),
		"skipped", len(summary.Skipped),
		"output", req.OutputPath,
		"duration", summary.Duration,
	)
	return summary, nil
}
