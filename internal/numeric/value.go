package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tells whether a Value was read as an integer or a float.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

func (k Kind) String() string {
	if k == KindFloat {
		return "float"
	}
	return "int"
}

// Value is a normalized figure. The zero Value is the integer 0.
type Value struct {
	kind Kind
	dec  decimal.Decimal
}

// Zero returns the integer zero used for placeholders and defaulted keys.
func Zero() Value {
	return Value{kind: KindInt}
}

// Int returns an integer Value.
func Int(n int64) Value {
	return Value{kind: KindInt, dec: decimal.NewFromInt(n)}
}

// Float returns a float Value holding d exactly.
func Float(d decimal.Decimal) Value {
	return Value{kind: KindFloat, dec: d}
}

// Kind reports how the value was read.
func (v Value) Kind() Kind {
	return v.kind
}

// Decimal returns the exact value.
func (v Value) Decimal() decimal.Decimal {
	return v.dec
}

// Int64 returns the integer part.
func (v Value) Int64() int64 {
	return v.dec.IntPart()
}

// Float64 returns the nearest float64.
func (v Value) Float64() float64 {
	f, _ := v.dec.Float64()
	return f
}

// IsZero reports whether the value equals zero.
func (v Value) IsZero() bool {
	return v.dec.IsZero()
}

// Equal compares kind and magnitude.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.dec.Equal(o.dec)
}

// String renders integers as plain digits and floats with at least one
// fractional digit, so 25 read as a float prints as "25.0".
func (v Value) String() string {
	s := v.dec.String()
	if v.kind == KindFloat && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
