// Package locate finds a line item's label inside a region and captures the
// figures printed after it.
//
// A Matcher joins three parts into one case-insensitive pattern:
//
//	label  \s+(?:\[\d+\]\s+)?  grammar
//
// The middle part tolerates a bracketed note reference such as "[4]" between
// the label and its first figure. It is never captured.
//
// Only the first (leftmost) match in a region is used. Later occurrences of
// the same label in that region are ignored; narrowing the region is how a
// catalog picks between repeated labels.
package locate

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackzampolin/fundrecon/internal/numeric"
	"github.com/jackzampolin/fundrecon/internal/region"
)

// MaxSlots is the largest number of figures a grammar may capture.
const MaxSlots = 2

// noteMarker matches an optional note reference between a label and its figures.
const noteMarker = `\s+(?:\[\d+\]\s+)?`

// Sentinel errors for grammars and matchers.
var (
	// ErrGrammarCaptures is returned when a grammar captures zero or more than MaxSlots figures.
	ErrGrammarCaptures = errors.New("grammar must capture one or two figures")

	// ErrSlotOutOfRange is returned when a slot does not address a captured figure.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Grammar describes the figures that follow a label: how many there are and
// which of them are captured.
type Grammar struct {
	name     string
	pattern  string
	captures int
}

// CompileGrammar checks that pattern is valid and captures one or two figures.
func CompileGrammar(name, pattern string) (*Grammar, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid grammar %q: %w", name, err)
	}
	n := re.NumSubexp()
	if n < 1 || n > MaxSlots {
		return nil, fmt.Errorf("%w: %q has %d", ErrGrammarCaptures, name, n)
	}
	return &Grammar{name: name, pattern: pattern, captures: n}, nil
}

// MustCompileGrammar is like CompileGrammar but panics on error.
func MustCompileGrammar(name, pattern string) *Grammar {
	g, err := CompileGrammar(name, pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Name returns the grammar name.
func (g *Grammar) Name() string { return g.name }

// Pattern returns the grammar pattern.
func (g *Grammar) Pattern() string { return g.pattern }

// Captures returns how many figures the grammar captures.
func (g *Grammar) Captures() int { return g.captures }

// Capture is the fixed-arity result of one match: up to MaxSlots raw tokens.
type Capture struct {
	tokens [MaxSlots]string
	n      int
}

// Len returns the number of captured tokens.
func (c Capture) Len() int { return c.n }

// Slot returns the raw token at index i.
func (c Capture) Slot(i int) (string, bool) {
	if i < 0 || i >= c.n {
		return "", false
	}
	return c.tokens[i], true
}

// Matcher finds one label followed by the figures described by a grammar.
type Matcher struct {
	label   string
	grammar *Grammar
	re      *regexp.Regexp
	offset  int // capture groups used by the label itself
}

// NewMatcher compiles label + note marker + grammar. Literal spaces in the
// label are relaxed to \s+.
func NewMatcher(label string, g *Grammar) (*Matcher, error) {
	relaxed := region.RelaxSpaces(label)
	labelRE, err := regexp.Compile(relaxed)
	if err != nil {
		return nil, fmt.Errorf("invalid label %q: %w", label, err)
	}
	re, err := regexp.Compile("(?i)(?:" + relaxed + ")" + noteMarker + "(?:" + g.pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("label %q with grammar %q: %w", label, g.name, err)
	}
	return &Matcher{
		label:   label,
		grammar: g,
		re:      re,
		offset:  labelRE.NumSubexp(),
	}, nil
}

// Label returns the label pattern as written.
func (m *Matcher) Label() string { return m.label }

// Grammar returns the grammar the matcher was built with.
func (m *Matcher) Grammar() *Grammar { return m.grammar }

// Find returns the figures of the first match in text.
func (m *Matcher) Find(text string) (Capture, bool) {
	if text == "" {
		return Capture{}, false
	}
	idx := m.re.FindStringSubmatchIndex(text)
	if idx == nil {
		return Capture{}, false
	}

	var c Capture
	for i := 0; i < m.grammar.captures; i++ {
		g := 1 + m.offset + i
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			break
		}
		c.tokens[i] = text[start:end]
		c.n++
	}
	return c, c.n > 0
}

// Result is the outcome of one lookup.
type Result struct {
	Found bool
	Raw   string
	Value numeric.Value
}

// Locate finds the matcher's label in region, selects the token at slot and
// normalizes it under policy. A missing label is not an error: it returns a
// Result with Found false. An error means a token was captured but could not
// be read.
func Locate(text string, m *Matcher, slot int, policy numeric.Policy) (Result, error) {
	if slot < 0 || slot >= m.grammar.captures {
		return Result{}, fmt.Errorf("%w: slot %d for grammar %q", ErrSlotOutOfRange, slot, m.grammar.name)
	}

	capture, ok := m.Find(text)
	if !ok {
		return Result{}, nil
	}
	raw, ok := capture.Slot(slot)
	if !ok {
		return Result{}, nil
	}

	v, err := policy.Normalize(raw)
	if err != nil {
		return Result{Raw: raw}, fmt.Errorf("label %q: %w", m.label, err)
	}
	return Result{Found: true, Raw: raw, Value: v}, nil
}
