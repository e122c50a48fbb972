package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Flatten joins pages into one searchable string. Line breaks become single
// spaces and pages are joined with a space, so a label wrapped across lines
// sits next to its figures. Text is NFC-normalized and Unicode spaces (NBSP,
// thin space) become ASCII spaces. Nothing is reordered or removed.
func Flatten(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(lineBreaks.Replace(page))
	}

	text := norm.NFC.String(b.String())
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}
