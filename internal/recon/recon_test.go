package recon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/consolidate"
	"github.com/jackzampolin/fundrecon/internal/source"
)

const testCatalog = `
name: test
locale: decimal_comma
grammars:
  integers: '([\d\.\-]+)\s+[\d\.\-]+'
regions:
  - name: balance
    boundary: '(Balans.*?Einde balans)'
tables:
  - name: balance
    region: balance
    grammar: integers
    items:
      - key: 'Balans: Beleggingen'
        label: 'Beleggingen'
      - key: 'Balans: Totaal'
        label: 'Totaal'
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// fixtureDir holds two identifiable reports and one file without a fund name.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "Zeta fund.txt", "Balans\nBeleggingen 800 700\nEinde balans")
	writeFile(t, dir, "Alpha fund.txt", "Balans\nBeleggingen 1.200 1.000\f Totaal 1.500 1.300\nEinde balans")
	writeFile(t, dir, "readme.txt", "Balans Beleggingen 1 2 Einde balans")
	writeFile(t, dir, "ignored.pdf", "not a txt")
	return dir
}

func testRequest(t *testing.T, dir string) Request {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	out := t.TempDir()
	return Request{
		Catalog:    cat,
		InputDir:   dir,
		Extensions: []string{".txt"},
		Workers:    2,
		OutputPath: filepath.Join(out, "reconciliation.csv"),
		AuditPath:  filepath.Join(out, "audit.csv"),
	}
}

func TestRun_SkipsUnidentified(t *testing.T) {
	req := testRequest(t, fixtureDir(t))

	summary, err := Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "test", summary.Catalog)
	assert.Equal(t, 2, summary.Keys)
	assert.Equal(t, 3, summary.Discovered)
	require.Len(t, summary.Documents, 2)
	assert.Equal(t, DocumentSummary{ID: "Alpha fund", Path: filepath.Join(req.InputDir, "Alpha fund.txt"), Found: 2}, summary.Documents[0])
	assert.Equal(t, 1, summary.Documents[1].Found)

	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "readme.txt", filepath.Base(summary.Skipped[0].Path))
	assert.Contains(t, summary.Skipped[0].Reason, source.ErrNoIdentifier.Error())

	data, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Fund;Alpha fund;Zeta fund\n"+
		"Balans: Beleggingen;1200;800\n"+
		"Balans: Totaal;1500;0\n", string(data))

	audit, err := os.ReadFile(summary.Audit)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(audit), "document;path;key;found;value\n"))
	assert.Contains(t, string(audit), "Zeta fund;"+filepath.Join(req.InputDir, "Zeta fund.txt")+";Balans: Totaal;false;0")
}

func TestRun_Strict(t *testing.T) {
	req := testRequest(t, fixtureDir(t))
	req.Strict = true

	_, err := Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
	assert.True(t, errors.Is(err, source.ErrNoIdentifier))

	_, statErr := os.Stat(req.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "nothing written on abort")
}

func TestRun_NoDocuments(t *testing.T) {
	req := testRequest(t, t.TempDir())

	_, err := Run(context.Background(), req)
	assert.True(t, errors.Is(err, ErrNoDocuments))
}

func TestRun_ReaderPanicIsSkipped(t *testing.T) {
	req := testRequest(t, fixtureDir(t))
	req.Readers = source.NewRegistry()
	req.Readers.Register(".txt", source.ReaderFunc(func(_ context.Context, path string) ([]string, error) {
		if strings.Contains(path, "Zeta") {
			panic("corrupt stream")
		}
		return source.TextReader{}.Pages(context.Background(), path)
	}))

	summary, err := Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, summary.Documents, 1)
	assert.Equal(t, "Alpha fund", summary.Documents[0].ID)
	require.Len(t, summary.Skipped, 2)
	assert.Equal(t, "Zeta fund.txt", filepath.Base(summary.Skipped[0].Path))
	assert.Contains(t, summary.Skipped[0].Reason, "panicked")
}

func TestRun_Cancelled(t *testing.T) {
	req := testRequest(t, fixtureDir(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Idempotent(t *testing.T) {
	dir := fixtureDir(t)
	req := testRequest(t, dir)

	_, err := Run(context.Background(), req)
	require.NoError(t, err)
	first, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)

	req.Workers = 1
	_, err = Run(context.Background(), req)
	require.NoError(t, err)
	second, err := os.ReadFile(req.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFromConfig(t *testing.T) {
	t.Run("maps configuration", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Catalog = "en"
		cfg.Output.Format = "xlsx"
		cfg.Output.Delimiter = "tab"
		cfg.Output.Encoding = "windows-1252"
		cfg.OnError = config.OnErrorAbort
		cfg.Identifier = `^(\w+)_`

		req, err := FromConfig(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "en", req.Catalog.Name)
		assert.Equal(t, consolidate.FormatXLSX, req.Output.Format)
		assert.Equal(t, '\t', req.Output.Delimiter)
		assert.Equal(t, consolidate.Windows1252, req.Output.Encoding)
		assert.True(t, req.Strict)
		require.NotNil(t, req.Identifier)

		id, err := source.Identifier(req.Identifier, "/x/ACME_2023.pdf")
		require.NoError(t, err)
		assert.Equal(t, "ACME", id)
	})

	t.Run("catalog from home directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "catalogs"), 0o755))
		writeFile(t, filepath.Join(dir, "catalogs"), "mine.yaml", testCatalog)

		cfg := config.DefaultConfig()
		cfg.Home = dir
		cfg.Catalog = "mine"

		req, err := FromConfig(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "test", req.Catalog.Name)
		assert.Nil(t, req.Identifier, "catalog pattern applies")
	})

	t.Run("rejects bad values", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"unknown catalog", func(c *config.Config) { c.Catalog = "no-such-catalog" }},
			{"identifier syntax", func(c *config.Config) { c.Identifier = "(" }},
			{"identifier without group", func(c *config.Config) { c.Identifier = "fund" }},
			{"format", func(c *config.Config) { c.Output.Format = "ods" }},
			{"delimiter", func(c *config.Config) { c.Output.Delimiter = ";;" }},
			{"encoding", func(c *config.Config) { c.Output.Encoding = "latin-9" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := config.DefaultConfig()
				tt.mutate(cfg)
				_, err := FromConfig(cfg, nil)
				assert.Error(t, err)
			})
		}
	})
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(WatcherConfig{
		Dir:         dir,
		Extensions:  []string{"txt"},
		Debounce:    50 * time.Millisecond,
		SettleDelay: 10 * time.Millisecond,
	})

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	writeFile(t, dir, "Beta fund.txt", "Balans Einde balans")
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	before := runs.Load()
	w.Trigger()
	require.Eventually(t, func() bool { return runs.Load() > before }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Settle(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(WatcherConfig{Dir: dir, SettleAttempts: 3, SettleDelay: 5 * time.Millisecond})

	writeFile(t, dir, "a.txt", "stable")
	assert.NoError(t, w.settle(context.Background(), filepath.Join(dir, "a.txt")))

	err := w.settle(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
