package sandbox

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"devapi/pkg/filters"
)

// parseQuery reads every "<relation>:<value>" parameter of q.
func parseQuery(q url.Values) ([]filters.FilterRelation, error) {
	var out []filters.FilterRelation
	for key, values := range q {
		for _, v := range values {
			f, err := filters.Parse(key, v)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", key, err)
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// matches reports whether the wire object satisfies every filter. A filter on
// a key the object does not carry never matches.
func matches(obj map[string]any, fs []filters.FilterRelation) bool {
	for _, f := range fs {
		raw, ok := obj[f.Key()]
		if !ok {
			return false
		}
		if !compare(fmt.Sprint(raw), f.Relation(), f.Value()) {
			return false
		}
	}
	return true
}

// compare orders numerically when both sides are decimals, lexically otherwise.
func compare(left string, rel filters.Relation, right string) bool {
	var c int
	l, lerr := decimal.NewFromString(left)
	r, rerr := decimal.NewFromString(right)
	if lerr == nil && rerr == nil {
		c = l.Cmp(r)
	} else {
		c = strings.Compare(left, right)
	}

	switch rel {
	case filters.EQ:
		return c == 0
	case filters.GT:
		return c > 0
	case filters.LT:
		return c < 0
	case filters.GE:
		return c >= 0
	case filters.LE:
		return c <= 0
	}
	return false
}
