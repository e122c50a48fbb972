package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Zeta fund 2023.pdf", "")
	writeFile(t, dir, "Alpha fund 2023.PDF", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "pdf", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	t.Run("default extensions", func(t *testing.T) {
		paths, err := Discover(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "Alpha fund 2023.PDF"),
			filepath.Join(dir, "Zeta fund 2023.pdf"),
		}, paths)
	})

	t.Run("extensions without dot", func(t *testing.T) {
		paths, err := Discover(dir, []string{"txt"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, paths)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Discover(filepath.Join(dir, "absent"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestIdentifier(t *testing.T) {
	pattern := regexp.MustCompile(`(.*?fund)`)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"shortest prefix", "/in/Global Equity fund 2023 fund.pdf", "Global Equity fund", nil},
		{"base name only", "/data/fund-reports/Alpha fund.pdf", "Alpha fund", nil},
		{"no marker", "/in/Annual report 2023.pdf", "", ErrNoIdentifier},
		{"case sensitive", "/in/Alpha FUND.pdf", "", ErrNoIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Identifier(pattern, tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextReader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Alpha fund.txt", "page one\nline two\fpage two\f")

	pages, err := TextReader{}.Pages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page one\nline two", "page two"}, pages)
}

func TestHTMLReader(t *testing.T) {
	dir := t.TempDir()

	t.Run("page elements", func(t *testing.T) {
		path := writeFile(t, dir, "paged.html", `<html><body>
<div class="page"><table><tr><td>Totaal activa</td><td>1.200</td><td>1.000</td></tr></table></div>
<div class="page"><p>Passiva</p><script>var x = 1;</script></div>
</body></html>`)

		pages, err := HTMLReader{}.Pages(context.Background(), path)
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Regexp(t, `Totaal activa\s+1\.200\s+1\.000`, pages[0])
		assert.Equal(t, "Passiva", pages[1])
	})

	t.Run("whole body", func(t *testing.T) {
		path := writeFile(t, dir, "flat.htm", `<html><body><h2>Balans</h2><p>Liquide middelen 5 4</p></body></html>`)

		pages, err := HTMLReader{}.Pages(context.Background(), path)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "Balans\nLiquide middelen 5 4", pages[0])
	})
}

func TestRegistry_Read(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "Alpha fund.TXT", "a\fb")
	doc := writeFile(t, dir, "Alpha fund.docx", "")

	r := DefaultRegistry(nil)
	assert.Equal(t, []string{".htm", ".html", ".pdf", ".txt"}, r.Extensions())

	pages, err := r.Read(context.Background(), txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pages)

	_, err = r.Read(context.Background(), doc)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = r.Read(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegistry_CustomReader(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.Register("csv", ReaderFunc(func(context.Context, string) ([]string, error) {
		return nil, boom
	}))

	_, err := r.Read(context.Background(), "x.csv")
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.ErrorIs(t, err, boom)
}

func TestPDFReader_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Broken fund.pdf", "this is not a pdf")

	_, err := DefaultRegistry(nil).Read(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnreadable)
}
