package form

import "errors"

var (
	// ErrUnknownField is returned when a key is not part of the schema.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidValue is returned when a value does not fit the field shape.
	ErrInvalidValue = errors.New("form: invalid value")
)
