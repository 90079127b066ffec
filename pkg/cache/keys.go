package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// MaxKeyLength is the longest key a layer accepts.
const MaxKeyLength = 250

const keyPrefix = "devapi"

// ValidateKey rejects empty keys, keys longer than MaxKeyLength and keys
// containing spaces or control characters.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return ErrInvalidKey
	case len(key) > MaxKeyLength:
		return fmt.Errorf("%w: %d bytes, max %d", ErrInvalidKey, len(key), MaxKeyLength)
	}
	if i := strings.IndexFunc(key, func(r rune) bool {
		return unicode.IsControl(r) || unicode.IsSpace(r)
	}); i >= 0 {
		return fmt.Errorf("%w: space or control character at byte %d", ErrInvalidKey, i)
	}
	return nil
}

// Keyspace separates cached responses of different API credentials that
// share a layer such as Redis. The zero Keyspace is unscoped.
type Keyspace string

// NewKeyspace derives a short stable keyspace from parts, typically the
// base URL and the bearer token. The token itself never appears in a key.
func NewKeyspace(parts ...string) Keyspace {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return Keyspace(hex.EncodeToString(h.Sum(nil))[:12])
}

// RequestKey returns the key for a GET of path with query. Query keys are
// sorted; the order of values under one key is kept since the API treats
// it as significant. Keys that would exceed MaxKeyLength become a digest
// of the request.
func (ks Keyspace) RequestKey(path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	if ks != "" {
		b.WriteString(":" + string(ks))
	}
	head := b.Len()

	b.WriteString(":GET:")
	b.WriteString(strings.Trim(path, "/"))
	if len(query) > 0 {
		b.WriteString("?")
		b.WriteString(query.Encode())
	}

	key := b.String()
	if ValidateKey(key) == nil {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return key[:head] + ":GET:sha256:" + hex.EncodeToString(sum[:])
}

// RequestKey is the unscoped request key.
func RequestKey(path string, query url.Values) string {
	return Keyspace("").RequestKey(path, query)
}
