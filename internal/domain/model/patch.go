package model

// Field is one column of a partial update. Only fields with Set are written.
type Field[T any] struct {
	Value T
	Set   bool
}

// Set marks v as the new value of a patch field.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Apply returns the patched value, or current when the field is unset.
func (f Field[T]) Apply(current T) T {
	if f.Set {
		return f.Value
	}
	return current
}
