// Package region carves named substrings out of flattened document text.
//
// A Boundary is a case-insensitive pattern with exactly one capture group.
// Extract returns that group for the first match, or "" when the boundary is
// not present. An empty region is a normal outcome: it means the table does
// not appear in this document.
package region

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBoundaryGroups is returned when a boundary does not have exactly one
// capture group.
var ErrBoundaryGroups = errors.New("boundary must have exactly one capture group")

// Boundary is a compiled start/end marker pair.
type Boundary struct {
	pattern string
	re      *regexp.Regexp
}

// CompileBoundary compiles pattern case-insensitively. Literal runs of spaces
// are relaxed to \s+ so the boundary tolerates irregular spacing.
func CompileBoundary(pattern string) (*Boundary, error) {
	re, err := regexp.Compile("(?i)" + RelaxSpaces(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid boundary %q: %w", pattern, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("%w: %q has %d", ErrBoundaryGroups, pattern, re.NumSubexp())
	}
	return &Boundary{pattern: pattern, re: re}, nil
}

// MustCompileBoundary is like CompileBoundary but panics on error.
func MustCompileBoundary(pattern string) *Boundary {
	b, err := CompileBoundary(pattern)
	if err != nil {
		panic(err)
	}
	return b
}

// Pattern returns the boundary as written.
func (b *Boundary) Pattern() string {
	return b.pattern
}

// Extract returns the captured group of the first match of b in source, or
// the empty string when there is no match. The match is non-greedy as far as
// the pattern is, so the region ends at the nearest end marker.
func Extract(source string, b *Boundary) string {
	if source == "" || b == nil {
		return ""
	}
	m := b.re.FindStringSubmatchIndex(source)
	if m == nil || m[2] < 0 {
		return ""
	}
	return source[m[2]:m[3]]
}

// RelaxSpaces rewrites literal runs of spaces outside character classes into
// \s+. Escapes and bracket expressions are copied through untouched.
func RelaxSpaces(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))

	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
			// A leading ']' (or '^]') is a literal member of the class.
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == ' ':
			for i+1 < len(pattern) && pattern[i+1] == ' ' {
				i++
			}
			// Keep quantified spaces ("a +b", "a ?b") as written.
			if i+1 < len(pattern) && strings.IndexByte("*+?{", pattern[i+1]) >= 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(`\s+`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
