// Package filters builds typed comparisons against named attributes and
// renders them into the multi-valued query parameters the sandbox API reads.
package filters

import (
	"errors"
	"fmt"
	"strings"
)

// Relation is a comparison kind. Its value is the wire code.
type Relation string

const (
	EQ Relation = "eq"
	GT Relation = "gt"
	LT Relation = "lt"
	GE Relation = "gte"
	LE Relation = "lte"
)

// ErrUnknownRelation is returned by Parse for an unrecognized wire code.
var ErrUnknownRelation = errors.New("filters: unknown relation")

// ErrMalformed is returned by Parse when the value has no "relation:" prefix.
var ErrMalformed = errors.New("filters: malformed filter value")

// ParseRelation maps a wire code to its Relation.
func ParseRelation(code string) (Relation, error) {
	switch r := Relation(code); r {
	case EQ, GT, LT, GE, LE:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRelation, code)
}

// FilterRelation is one comparison of an attribute against a value. The value
// is not validated here.
type FilterRelation struct {
	key      string
	relation Relation
	value    string
}

// Key returns the attribute name.
func (f FilterRelation) Key() string { return f.key }

// Relation returns the comparison kind.
func (f FilterRelation) Relation() Relation { return f.relation }

// Value returns the comparison operand.
func (f FilterRelation) Value() string { return f.value }

// Encode returns the "<relation>:<value>" wire form.
func (f FilterRelation) Encode() string {
	return string(f.relation) + ":" + f.value
}

func (f FilterRelation) String() string {
	return f.key + "=" + f.Encode()
}

// Eq matches attributes equal to value.
func Eq(key, value string) FilterRelation { return FilterRelation{key, EQ, value} }

// Gt matches attributes greater than value.
func Gt(key, value string) FilterRelation { return FilterRelation{key, GT, value} }

// Lt matches attributes less than value.
func Lt(key, value string) FilterRelation { return FilterRelation{key, LT, value} }

// Ge matches attributes greater than or equal to value.
func Ge(key, value string) FilterRelation { return FilterRelation{key, GE, value} }

// Le matches attributes less than or equal to value.
func Le(key, value string) FilterRelation { return FilterRelation{key, LE, value} }

// Filter builds relations against a single attribute:
//
//	filters.For("riskScore").Ge("20")
type Filter struct {
	key string
}

// For starts a filter on the named wire attribute.
func For(key string) Filter {
	return Filter{key: key}
}

func (f Filter) Eq(value string) FilterRelation { return Eq(f.key, value) }
func (f Filter) Gt(value string) FilterRelation { return Gt(f.key, value) }
func (f Filter) Lt(value string) FilterRelation { return Lt(f.key, value) }
func (f Filter) Ge(value string) FilterRelation { return Ge(f.key, value) }
func (f Filter) Le(value string) FilterRelation { return Le(f.key, value) }

// Parse reads the "<relation>:<value>" wire form of a filter on key.
// Only the first colon separates relation from value.
func Parse(key, encoded string) (FilterRelation, error) {
	code, value, ok := strings.Cut(encoded, ":")
	if !ok {
		return FilterRelation{}, fmt.Errorf("%w: %q", ErrMalformed, encoded)
	}
	rel, err := ParseRelation(code)
	if err != nil {
		return FilterRelation{}, err
	}
	return FilterRelation{key: key, relation: rel, value: value}, nil
}
