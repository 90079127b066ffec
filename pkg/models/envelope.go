package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"devapi/pkg/fieldmap"
)

// Envelope keys wrapping entity lists on the wire.
const (
	AccountsKey     = "Accounts"
	TransactionsKey = "Transactions"
)

// DecodeAccounts decodes an {"Accounts": [...]} envelope. A missing key or an
// empty list yields an empty slice.
func DecodeAccounts(data []byte) ([]Account, error) {
	return decodeEnvelope(data, AccountsKey, DecodeAccount)
}

// DecodeTransactions decodes a {"Transactions": [...]} envelope.
func DecodeTransactions(data []byte) ([]Transaction, error) {
	return decodeEnvelope(data, TransactionsKey, DecodeTransaction)
}

// EncodeAccounts builds an {"Accounts": [...]} envelope.
func EncodeAccounts(accounts []Account) (map[string]any, error) {
	return encodeEnvelope(accounts, AccountsKey, EncodeAccount)
}

// EncodeTransactions builds a {"Transactions": [...]} envelope.
func EncodeTransactions(txns []Transaction) (map[string]any, error) {
	return encodeEnvelope(txns, TransactionsKey, EncodeTransaction)
}

func decodeEnvelope[T any](data []byte, key string, decode func(map[string]any) (T, error)) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var env map[string]any
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", key, err)
	}

	raw, ok := env[key]
	if !ok || raw == nil {
		return []T{}, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &fieldmap.SchemaError{Entity: "envelope", Key: key, Direction: fieldmap.Decode, Reason: "not a list"}
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &fieldmap.SchemaError{Entity: "envelope", Key: fmt.Sprintf("%s[%d]", key, i), Direction: fieldmap.Decode, Reason: "not an object"}
		}
		v, err := decode(obj)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, v)
	}

	return out, nil
}

func encodeEnvelope[T any](items []T, key string, encode func(T) (map[string]any, error)) (map[string]any, error) {
	list := make([]any, 0, len(items))
	for _, item := range items {
		obj, err := encode(item)
		if err != nil {
			return nil, err
		}
		list = append(list, obj)
	}
	return map[string]any{key: list}, nil
}
