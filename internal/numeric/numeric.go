// Package numeric turns captured figure tokens into typed numbers.
//
// Annual reports print the same figure in different ways depending on the
// locale they were written in. A Policy names one of those conventions and
// owns the rules for reading a token under it.
package numeric

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedToken is returned when a token cannot be read under a policy.
var ErrMalformedToken = errors.New("malformed numeric token")

// Placeholder is the dash printed in place of a zero amount.
const Placeholder = "-"

// Policy selects the locale rules used to read a token.
type Policy string

const (
	// DecimalComma reads "1.234" as 1234 and "1,5" or "12,5%" as floats.
	DecimalComma Policy = "decimal_comma"

	// DecimalPoint reads "1,234" as 1234. Results are always integers.
	DecimalPoint Policy = "decimal_point"
)

// Policies returns all supported policies.
func Policies() []Policy {
	return []Policy{DecimalComma, DecimalPoint}
}

// ParsePolicy resolves a policy by name.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case DecimalComma:
		return DecimalComma, nil
	case DecimalPoint:
		return DecimalPoint, nil
	default:
		return "", fmt.Errorf("unknown numeric policy %q", name)
	}
}

// Normalize converts a token captured by a numeric grammar into a Value.
func (p Policy) Normalize(token string) (Value, error) {
	token = strings.TrimSpace(token)
	if token == Placeholder {
		return Zero(), nil
	}

	switch p {
	case DecimalComma:
		return normalizeDecimalComma(token)
	case DecimalPoint:
		return normalizeDecimalPoint(token)
	default:
		return Value{}, fmt.Errorf("unknown numeric policy %q", string(p))
	}
}

// normalizeDecimalComma applies, in order: comma or percent means float with
// periods as thousands separators; a period alone means integer thousands;
// otherwise plain integer.
func normalizeDecimalComma(token string) (Value, error) {
	if strings.ContainsAny(token, ",%") {
		s := strings.ReplaceAll(token, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = strings.ReplaceAll(s, "%", "")
		d, err := parse(s, token)
		if err != nil {
			return Value{}, err
		}
		return Float(d), nil
	}

	s := strings.ReplaceAll(token, ".", "")
	d, err := parse(s, token)
	if err != nil {
		return Value{}, err
	}
	return integer(d, token)
}

func normalizeDecimalPoint(token string) (Value, error) {
	if strings.ContainsAny(token, ".%") {
		return Value{}, fmt.Errorf("%w: %q under %s", ErrMalformedToken, token, DecimalPoint)
	}
	d, err := parse(strings.ReplaceAll(token, ",", ""), token)
	if err != nil {
		return Value{}, err
	}
	return integer(d, token)
}

func parse(s, token string) (decimal.Decimal, error) {
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	return d, nil
}

func integer(d decimal.Decimal, token string) (Value, error) {
	if !d.IsInteger() {
		return Value{}, fmt.Errorf("%w: %q is not an integer", ErrMalformedToken, token)
	}
	return Value{kind: KindInt, dec: d}, nil
}
