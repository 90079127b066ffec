package filters

import (
	"net/url"
	"slices"
	"strings"
)

// Query is a multi-valued parameter map that remembers the order in which
// keys were first seen. The zero value is an empty query.
type Query struct {
	keys   []string
	values map[string][]string
}

// Render groups filters by attribute, keeping the first-seen order of
// attributes and the input order within each attribute, and encodes each
// filter as "<relation>:<value>". Attributes without filters are absent.
func Render(fs []FilterRelation) Query {
	q := Query{values: make(map[string][]string)}
	for _, f := range fs {
		if _, seen := q.values[f.key]; !seen {
			q.keys = append(q.keys, f.key)
		}
		q.values[f.key] = append(q.values[f.key], f.Encode())
	}
	return q
}

// Keys returns the attribute names in first-seen order.
func (q Query) Keys() []string {
	return slices.Clone(q.keys)
}

// Get returns the encoded filters for key, or nil.
func (q Query) Get(key string) []string {
	return slices.Clone(q.values[key])
}

// Len returns the number of attributes.
func (q Query) Len() int {
	return len(q.keys)
}

// Values converts the query into url.Values for a transport.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q.keys))
	for _, k := range q.keys {
		v[k] = slices.Clone(q.values[k])
	}
	return v
}

// Equal reports whether both queries have the same keys in the same order
// with the same values in the same order.
func (q Query) Equal(o Query) bool {
	if !slices.Equal(q.keys, o.keys) {
		return false
	}
	for _, k := range q.keys {
		if !slices.Equal(q.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

// Encode renders the query string with keys in first-seen order.
func (q Query) Encode() string {
	var b strings.Builder
	for _, k := range q.keys {
		for _, v := range q.values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
