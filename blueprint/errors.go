package blueprint

import "errors"

// Common blueprint errors.
var (
	// ErrNotFound is returned when no blueprint file exists for an id.
	ErrNotFound = errors.New("blueprint not found")

	// ErrInvalidJSON is returned when a blueprint file cannot be decoded.
	ErrInvalidJSON = errors.New("invalid blueprint JSON")

	// ErrInvalidID is returned when an identifier violates the naming convention.
	ErrInvalidID = errors.New("invalid blueprint id")

	// ErrDuplicateID is returned when two files in a store declare the same id.
	ErrDuplicateID = errors.New("duplicate blueprint id")
)
