package source

import (
	"context"
	"os"
	"strings"
)

// TextReader reads plain text exports. Form feeds separate pages.
type TextReader struct{}

// Pages implements Reader.
func (TextReader) Pages(_ context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(data), "\f")
	return strings.Split(text, "\f"), nil
}
