package space

import "errors"

var (
	// ErrDimensionMismatch is returned when the number of values given
	// for an element does not match the number of dimensions in a space
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrOutOfBounds is returned when a value lies outside of the bounds
	// of its dimension
	ErrOutOfBounds = errors.New("value out of bounds")
)
