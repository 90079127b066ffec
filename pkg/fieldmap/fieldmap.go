// Package fieldmap translates between internal attribute names and the
// names used on the wire, applying a declared coercion to every decoded value.
//
// A FieldMap is built once, never mutated and safe for concurrent use.
package fieldmap

import (
	"errors"
	"fmt"
)

// Field declares one attribute: its internal name, its wire name and how a
// wire value is coerced into the domain type.
type Field struct {
	Name   string
	Wire   string
	Coerce Coercer
}

// Attr is an internal attribute and the wire-ready value to assign to it.
type Attr struct {
	Name  string
	Value any
}

// Values holds decoded attributes keyed by internal name. Every value has the
// type produced by its field's Coercer.
type Values map[string]any

// FieldMap is a bijective internal name ↔ wire name table.
type FieldMap struct {
	entity  string
	fields  []Field
	byName  map[string]int
	byWire  map[string]int
	ignored map[string]struct{}
}

// New builds a FieldMap for the named entity. It fails with a SchemaError if
// two fields share an internal name or a wire name.
func New(entity string, fields ...Field) (*FieldMap, error) {
	m := &FieldMap{
		entity:  entity,
		fields:  make([]Field, len(fields)),
		byName:  make(map[string]int, len(fields)),
		byWire:  make(map[string]int, len(fields)),
		ignored: map[string]struct{}{},
	}
	copy(m.fields, fields)

	for i, f := range m.fields {
		if f.Name == "" || f.Wire == "" {
			return nil, &SchemaError{Entity: entity, Key: f.Name + "/" + f.Wire, Direction: Encode, Reason: "empty name"}
		}
		if _, dup := m.byName[f.Name]; dup {
			return nil, &SchemaError{Entity: entity, Key: f.Name, Direction: Encode, Reason: "duplicate internal name"}
		}
		if _, dup := m.byWire[f.Wire]; dup {
			return nil, &SchemaError{Entity: entity, Key: f.Wire, Direction: Decode, Reason: "duplicate wire name"}
		}
		if f.Coerce == nil {
			m.fields[i].Coerce = String
		}
		m.byName[f.Name] = i
		m.byWire[f.Wire] = i
	}

	return m, nil
}

// MustNew is like New but panics on an invalid table. Intended for
// package-level tables built at init.
func MustNew(entity string, fields ...Field) *FieldMap {
	m, err := New(entity, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Ignore returns a copy of the map that skips the given wire keys on decode
// instead of rejecting them.
func (m *FieldMap) Ignore(wireKeys ...string) *FieldMap {
	cp := *m
	cp.ignored = make(map[string]struct{}, len(m.ignored)+len(wireKeys))
	for k := range m.ignored {
		cp.ignored[k] = struct{}{}
	}
	for _, k := range wireKeys {
		cp.ignored[k] = struct{}{}
	}
	return &cp
}

// Entity returns the entity name used in error messages.
func (m *FieldMap) Entity() string {
	return m.entity
}

// Len returns the number of mapped attributes.
func (m *FieldMap) Len() int {
	return len(m.fields)
}

// Names returns the internal names in declaration order.
func (m *FieldMap) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// WireName returns the wire name of an internal attribute.
func (m *FieldMap) WireName(name string) (string, error) {
	i, ok := m.byName[name]
	if !ok {
		return "", &SchemaError{Entity: m.entity, Key: name, Direction: Encode}
	}
	return m.fields[i].Wire, nil
}

// Name returns the internal name of a wire key.
func (m *FieldMap) Name(wire string) (string, error) {
	i, ok := m.byWire[wire]
	if !ok {
		return "", &SchemaError{Entity: m.entity, Key: wire, Direction: Decode}
	}
	return m.fields[i].Name, nil
}

// Encode renames each attribute to its wire name. Values are assigned as given;
// nested entities must already be encoded by their own codec.
func (m *FieldMap) Encode(attrs ...Attr) (map[string]any, error) {
	out := make(map[string]any, len(attrs))
	for _, a := range attrs {
		wire, err := m.WireName(a.Name)
		if err != nil {
			return nil, err
		}
		out[wire] = a.Value
	}
	return out, nil
}

// Decode renames every wire key to its internal name and coerces its value.
// Unknown wire keys fail with a SchemaError unless ignored, and so does a
// mapped key that is missing from the object. A value that cannot be coerced
// fails with a CoercionError.
func (m *FieldMap) Decode(wire map[string]any) (Values, error) {
	out := make(Values, len(m.fields))

	for key, raw := range wire {
		i, ok := m.byWire[key]
		if !ok {
			if _, skip := m.ignored[key]; skip {
				continue
			}
			return nil, &SchemaError{Entity: m.entity, Key: key, Direction: Decode}
		}

		f := m.fields[i]
		v, err := f.Coerce(raw)
		if err != nil {
			return nil, m.coercionError(f, raw, err)
		}
		out[f.Name] = v
	}

	for _, f := range m.fields {
		if _, ok := out[f.Name]; !ok {
			return nil, &SchemaError{Entity: m.entity, Key: f.Wire, Direction: Decode, Reason: "missing key"}
		}
	}

	return out, nil
}

func (m *FieldMap) coercionError(f Field, raw any, err error) error {
	var mm *mismatch
	if errors.As(err, &mm) {
		return &CoercionError{Entity: m.entity, Attribute: f.Name, Value: raw, Want: mm.want, Err: mm.err}
	}
	// Errors from a nested codec keep their own type.
	return fmt.Errorf("%s.%s: %w", m.entity, f.Name, err)
}

// Get returns the decoded value of an attribute, or the zero value if it is
// absent. The type must match the field's Coercer.
func Get[T any](v Values, name string) T {
	t, _ := v[name].(T)
	return t
}
