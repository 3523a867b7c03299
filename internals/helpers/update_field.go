package helper

import "encoding/json"

// UpdateField is a tri-state PATCH field: absent, explicit null, or a value.
type UpdateField[T any] struct {
	set   bool
	null  bool
	value T
}

func (f *UpdateField[T]) UnmarshalJSON(b []byte) error {
	f.set = true
	if string(b) == "null" {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	return json.Unmarshal(b, &f.value)
}

func (f UpdateField[T]) ShouldUpdate() bool { return f.set }
func (f UpdateField[T]) IsNull() bool       { return f.set && f.null }
func (f UpdateField[T]) Val() T             { return f.value }

// Set is for building patches in code and tests.
func Set[T any](v T) UpdateField[T] { return UpdateField[T]{set: true, value: v} }

// SetNull marks the field as explicitly cleared.
func SetNull[T any]() UpdateField[T] { return UpdateField[T]{set: true, null: true} }
