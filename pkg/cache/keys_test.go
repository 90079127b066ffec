package cache

import (
	"net/url"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "devapi:GET:accounts", false},
		{"valid with query", "devapi:GET:accounts?riskScore=gte%3A20", false},
		{"valid unicode", "café", false},
		{"empty key", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"control char null", "key\x00value", true},
		{"control char tab", "key\tvalue", true},
		{"inner space", "key value", true},
		{"unicode control", "key\x7fvalue", true},
		{"exactly 250 chars", strings.Repeat("a", 250), false},
		{"251 chars", strings.Repeat("a", 251), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestKeyspace(t *testing.T) {
	a := NewKeyspace("https://sandbox.example/api/data", "token-a")
	b := NewKeyspace("https://sandbox.example/api/data", "token-b")

	if len(a) != 12 {
		t.Errorf("keyspace length = %d", len(a))
	}
	if a == b {
		t.Error("different tokens should get different keyspaces")
	}
	if a != NewKeyspace("https://sandbox.example/api/data", "token-a") {
		t.Error("keyspace should be stable")
	}
	if NewKeyspace("ab", "c") == NewKeyspace("a", "bc") {
		t.Error("part boundaries should matter")
	}

	key := a.RequestKey("accounts", nil)
	if key != "devapi:"+string(a)+":GET:accounts" {
		t.Errorf("scoped key = %q", key)
	}
	if strings.Contains(key, "token-a") {
		t.Error("token must not appear in the key")
	}
	if key == b.RequestKey("accounts", nil) {
		t.Error("keyspaces should not share keys")
	}
}

func TestRequestKey(t *testing.T) {
	if got := RequestKey("/accounts/", nil); got != "devapi:GET:accounts" {
		t.Errorf("RequestKey without query = %q", got)
	}

	a := RequestKey("accounts", url.Values{"state": {"eq:open"}, "riskScore": {"gte:20"}})
	b := RequestKey("accounts", url.Values{"riskScore": {"gte:20"}, "state": {"eq:open"}})
	if a != b {
		t.Errorf("query key order should not matter: %q != %q", a, b)
	}

	c := RequestKey("accounts", url.Values{"riskScore": {"gte:20", "lt:80"}})
	d := RequestKey("accounts", url.Values{"riskScore": {"lt:80", "gte:20"}})
	if c == d {
		t.Error("value order under one key should be kept")
	}

	if RequestKey("accounts/a1", nil) == RequestKey("accounts/a2", nil) {
		t.Error("different paths should not collide")
	}
}

func TestRequestKey_Long(t *testing.T) {
	query := url.Values{"merchant": {strings.Repeat("x", 400)}}

	key := RequestKey("transactions/acc", query)
	if err := ValidateKey(key); err != nil {
		t.Fatalf("long request key should be valid: %v", err)
	}
	if !strings.HasPrefix(key, "devapi:GET:sha256:") {
		t.Errorf("long key should be a digest, got %q", key)
	}

	scoped := Keyspace("abc").RequestKey("transactions/acc", query)
	if !strings.HasPrefix(scoped, "devapi:abc:GET:sha256:") {
		t.Errorf("long scoped key should keep its keyspace, got %q", scoped)
	}
	if key != RequestKey("transactions/acc", query) {
		t.Error("digest key should be stable")
	}
}
