package filters

import (
	"errors"
	"slices"
	"testing"
)

const (
	testKey   = "some-key"
	testValue = "some-value"
)

func TestConstructors(t *testing.T) {
	f := For(testKey)

	tests := []struct {
		name     string
		filter   FilterRelation
		relation Relation
		wire     string
	}{
		{"eq", f.Eq(testValue), EQ, "eq:some-value"},
		{"gt", f.Gt(testValue), GT, "gt:some-value"},
		{"lt", f.Lt(testValue), LT, "lt:some-value"},
		{"gte", f.Ge(testValue), GE, "gte:some-value"},
		{"lte", f.Le(testValue), LE, "lte:some-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.filter.Key() != testKey {
				t.Errorf("Key() = %q, want %q", tt.filter.Key(), testKey)
			}
			if tt.filter.Relation() != tt.relation {
				t.Errorf("Relation() = %q, want %q", tt.filter.Relation(), tt.relation)
			}
			if tt.filter.Value() != testValue {
				t.Errorf("Value() = %q, want %q", tt.filter.Value(), testValue)
			}
			if tt.filter.Encode() != tt.wire {
				t.Errorf("Encode() = %q, want %q", tt.filter.Encode(), tt.wire)
			}
		})
	}
}

func TestBuilderMatchesFunctions(t *testing.T) {
	if For("riskScore").Ge("20") != Ge("riskScore", "20") {
		t.Error("For(k).Ge(v) should equal Ge(k, v)")
	}
}

func TestRender_GroupsInOrder(t *testing.T) {
	q := Render([]FilterRelation{
		Eq("riskScore", "20"),
		Lt("balance", "500"),
		Ge("riskScore", "10"),
	})

	if got := q.Keys(); !slices.Equal(got, []string{"riskScore", "balance"}) {
		t.Errorf("Keys() = %v", got)
	}
	if got := q.Get("riskScore"); !slices.Equal(got, []string{"eq:20", "gte:10"}) {
		t.Errorf("riskScore = %v, want [eq:20 gte:10]", got)
	}
	if got := q.Get("balance"); !slices.Equal(got, []string{"lt:500"}) {
		t.Errorf("balance = %v", got)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestRender_Empty(t *testing.T) {
	q := Render(nil)
	if q.Len() != 0 || len(q.Values()) != 0 || q.Encode() != "" {
		t.Errorf("Render(nil) = %+v, want empty", q)
	}
	if q.Get("riskScore") != nil {
		t.Error("absent attribute should have no values")
	}

	var zero Query
	if !zero.Equal(q) {
		t.Error("zero Query should equal an empty render")
	}
}

func TestRender_Deterministic(t *testing.T) {
	fs := []FilterRelation{
		Gt("creditScore", "300"),
		Eq("state", "open"),
		Le("creditScore", "800"),
		Eq("currencyCode", "GBP"),
	}

	first, second := Render(fs), Render(fs)
	if !first.Equal(second) {
		t.Error("rendering the same filters twice should be identical")
	}
	if first.Encode() != second.Encode() {
		t.Errorf("Encode differs: %q vs %q", first.Encode(), second.Encode())
	}
	want := "creditScore=gt%3A300&creditScore=lte%3A800&state=eq%3Aopen&currencyCode=eq%3AGBP"
	if first.Encode() != want {
		t.Errorf("Encode() = %q, want %q", first.Encode(), want)
	}
}

func TestQuery_ValuesIsACopy(t *testing.T) {
	q := Render([]FilterRelation{Ge("riskScore", "20")})

	v := q.Values()
	if got := v["riskScore"]; !slices.Equal(got, []string{"gte:20"}) {
		t.Fatalf("Values() = %v", v)
	}
	v["riskScore"][0] = "changed"
	if q.Get("riskScore")[0] != "gte:20" {
		t.Error("mutating Values() must not change the query")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		encoded string
		want    FilterRelation
		err     error
	}{
		{"gte:20", Ge("riskScore", "20"), nil},
		{"eq:2019-05-20 10:51:33", Eq("riskScore", "2019-05-20 10:51:33"), nil},
		{"lt:", Lt("riskScore", ""), nil},
		{"ne:20", FilterRelation{}, ErrUnknownRelation},
		{"20", FilterRelation{}, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.encoded, func(t *testing.T) {
			got, err := Parse("riskScore", tt.encoded)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.encoded, err, tt.err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.encoded, got, tt.want)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, f := range []FilterRelation{Eq("a", "1"), Gt("a", "2"), Lt("a", "3"), Ge("a", "4"), Le("a", "5")} {
		got, err := Parse(f.Key(), f.Encode())
		if err != nil || got != f {
			t.Errorf("Parse(Encode(%v)) = %v, %v", f, got, err)
		}
	}
}
