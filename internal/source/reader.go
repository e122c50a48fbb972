package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Reader yields the text of a document, one string per page, in page order.
type Reader interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, path string) ([]string, error)

// Pages calls f.
func (f ReaderFunc) Pages(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}

// Registry dispatches to a Reader by file extension.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// DefaultRegistry returns a registry with the PDF, text and HTML readers.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(".pdf", &PDFReader{Logger: logger})
	r.Register(".txt", TextReader{})
	html := HTMLReader{}
	r.Register(".html", html)
	r.Register(".htm", html)
	return r
}

// Register sets the reader for ext, replacing any previous one.
func (r *Registry) Register(ext string, reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[normalizeExt(ext)] = reader
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Read returns the pages of the document at path.
func (r *Registry) Read(ctx context.Context, path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	reader, ok := r.readers[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	pages, err := reader.Pages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, filepath.Base(path), err)
	}
	return pages, nil
}
