package fieldmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Coercer converts a raw wire value into the attribute's domain type.
// The rule is declared per attribute, never inferred from the value.
type Coercer func(raw any) (any, error)

// String accepts strings and JSON numbers (kept verbatim). A null value
// decodes to the empty string.
func String(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, &mismatch{want: "string"}
}

// Int accepts any string or number representable as an integer.
func Int(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		// float64(math.MaxInt) rounds up to one past the largest int
		if v != math.Trunc(v) || v < math.MinInt || v >= math.MaxInt {
			return nil, &mismatch{want: "integer"}
		}
		return int(v), nil
	case json.Number:
		return parseInt(v.String())
	case string:
		return parseInt(v)
	}
	return nil, &mismatch{want: "integer"}
}

var (
	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// parseInt accepts integer text and also decimal or exponent forms with no
// fractional part, such as "22.0" or "1e3".
func parseInt(s string) (any, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &mismatch{want: "integer", err: err}
	}
	if !d.IsInteger() || d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return nil, &mismatch{want: "integer"}
	}
	return int(d.IntPart()), nil
}

// Decimal accepts any string or number representable as a fixed-point decimal.
func Decimal(raw any) (any, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &mismatch{want: "decimal"}
		}
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	}
	return nil, &mismatch{want: "decimal"}
}

func parseDecimal(s string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, &mismatch{want: "decimal", err: err}
	}
	return d, nil
}

// Bool accepts native booleans and "true"/"false" in any case.
func Bool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch {
		case strings.EqualFold(v, "true"):
			return true, nil
		case strings.EqualFold(v, "false"):
			return false, nil
		}
	}
	return nil, &mismatch{want: "boolean"}
}

// StringList accepts a JSON array of strings.
func StringList(raw any) (any, error) {
	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &mismatch{want: "list of strings"}
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, &mismatch{want: "list of strings"}
}

// Enum accepts exactly one of the allowed wire values, compared case-sensitively.
// Anything else fails; there is no fallback value.
func Enum[T ~string](allowed ...T) Coercer {
	set := make(map[T]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	want := fmt.Sprintf("one of %v", allowed)

	return func(raw any) (any, error) {
		var v T
		switch s := raw.(type) {
		case T:
			v = s
		case string:
			v = T(s)
		default:
			return nil, &mismatch{want: want}
		}
		if _, ok := set[v]; !ok {
			return nil, &mismatch{want: want}
		}
		return v, nil
	}
}

// Nested decodes a JSON object through another entity's decoder.
func Nested[T any](decode func(map[string]any) (T, error)) Coercer {
	return func(raw any) (any, error) {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, &mismatch{want: "object"}
		}
		return decode(obj)
	}
}
