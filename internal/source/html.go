package source

import (
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLReader reads HTML renditions of annual reports. Elements with class
// "page" are pages; without them the whole body is one page.
type HTMLReader struct{}

// blockElements end a line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "td": true, "th": true,
	"li": true, "table": true, "section": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true,
}

// Pages implements Reader.
func (HTMLReader) Pages(_ context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}
	doc.Find("script, style").Remove()

	var pages []string
	doc.Find(".page").Each(func(_ int, s *goquery.Selection) {
		pages = append(pages, selectionText(s))
	})
	if len(pages) == 0 {
		pages = append(pages, selectionText(doc.Find("body")))
	}
	return pages, nil
}

// selectionText returns the text of s with a line break after every block
// element, so table cells do not run together.
func selectionText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			if name == "#text" {
				b.WriteString(c.Text())
				return
			}
			walk(c)
			if blockElements[name] {
				b.WriteByte('\n')
			}
		})
	}
	walk(s)
	return strings.TrimSpace(b.String())
}
