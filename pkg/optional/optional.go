// Package optional provides a value wrapper that remembers whether a JSON field was present,
// so partial updates can tell "absent" apart from "set to null" and "set to zero".
package optional

import (
	"bytes"
	"encoding/json"
)

type Value[T any] struct {
	// Set is true when the field was present in the input, even as null.
	Set bool
	// Null is true when the field was present and explicitly null.
	Null bool
	V    T
}

func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.Null = true
		v.V = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.V)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set || v.Null {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// Present reports whether the field carries a non-null value.
func (v Value[T]) Present() bool {
	return v.Set && !v.Null
}

// Ptr returns nil for absent or null fields.
func (v Value[T]) Ptr() *T {
	if !v.Present() {
		return nil
	}
	val := v.V
	return &val
}

// ApplyTo copies the value into dst when the field was set. A null resets dst to nil.
func (v Value[T]) ApplyTo(dst **T) bool {
	if !v.Set {
		return false
	}
	*dst = v.Ptr()
	return true
}
