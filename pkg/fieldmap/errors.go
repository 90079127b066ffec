package fieldmap

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by SchemaError and CoercionError through errors.Is.
var (
	// ErrSchema is returned when a name lookup fails in either direction
	ErrSchema = errors.New("fieldmap: schema mismatch")

	// ErrCoercion is returned when a wire value cannot be converted to its declared type
	ErrCoercion = errors.New("fieldmap: coercion failed")
)

// Direction names the side of the mapping a lookup started from.
type Direction string

const (
	// Encode means an internal name was looked up to find its wire name.
	Encode Direction = "encode"
	// Decode means a wire name was looked up to find its internal name.
	Decode Direction = "decode"
)

// SchemaError reports a FieldMap lookup that had no entry.
type SchemaError struct {
	Entity    string
	Key       string
	Direction Direction
	Reason    string
}

func (e *SchemaError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no mapping"
	}
	return fmt.Sprintf("fieldmap: %s %s: %s for %q", e.Entity, e.Direction, reason, e.Key)
}

// Is makes errors.Is(err, ErrSchema) true for any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// CoercionError reports a wire value that could not be converted to the
// attribute's declared domain type.
type CoercionError struct {
	Entity    string
	Attribute string
	Value     any
	Want      string
	Err       error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("fieldmap: %s.%s: cannot coerce %#v to %s", e.Entity, e.Attribute, e.Value, e.Want)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrCoercion) true for any CoercionError.
func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsSchema checks if the error is a schema mismatch.
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsCoercion checks if the error is a failed type coercion.
func IsCoercion(err error) bool {
	return errors.Is(err, ErrCoercion)
}

// mismatch is what a Coercer returns; Decode turns it into a CoercionError
// with the entity and attribute filled in.
type mismatch struct {
	want string
	err  error
}

func (m *mismatch) Error() string {
	if m.err != nil {
		return "want " + m.want + ": " + m.err.Error()
	}
	return "want " + m.want
}
