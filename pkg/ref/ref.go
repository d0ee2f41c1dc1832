package ref

import (
	"bytes"
	"encoding/json"
)

// Identifiable is implemented by types that can report their own identifier
// when they arrive embedded instead of as a bare id.
type Identifiable interface {
	RefID() string
}

// Ref represents a reference that the commerce API returns either as a bare
// identifier string or as a fully embedded object.
type Ref[T Identifiable] struct {
	id    string
	value *T
}

// FromID creates a Ref holding only an identifier.
func FromID[T Identifiable](id string) Ref[T] {
	return Ref[T]{id: id}
}

// FromValue creates a Ref holding an embedded object.
func FromValue[T Identifiable](v T) Ref[T] {
	return Ref[T]{value: &v}
}

// ID returns the identifier, regardless of which form the reference arrived in.
// Empty when the reference is absent.
func (r Ref[T]) ID() string {
	if r.id != "" {
		return r.id
	}
	if r.value != nil {
		return (*r.value).RefID()
	}

	return ""
}

// Value returns the embedded object when the reference arrived embedded.
func (r Ref[T]) Value() (T, bool) {
	if r.value == nil {
		var zero T
		return zero, false
	}

	return *r.value, true
}

// IsZero reports whether the reference is absent entirely.
func (r Ref[T]) IsZero() bool {
	return r.id == "" && r.value == nil
}

// UnmarshalJSON accepts a string id, an embedded object, a numeric id, or
// null. Unrecognized shapes leave the reference zero rather than failing the
// surrounding row.
func (r *Ref[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref[T]{}

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var id string
		if err := json.Unmarshal(b, &id); err == nil {
			r.id = id
		}
	case '{':
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			r.value = &v
		}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			r.id = n.String()
		}
	}

	return nil
}
