package diagram

import "errors"

var (
	// ErrDiagramNotFound is returned when a diagram ID does not exist.
	ErrDiagramNotFound = errors.New("diagram not found")

	// ErrInvalidName is returned when a diagram name fails validation.
	ErrInvalidName = errors.New("invalid diagram name")

	// ErrEmptyUpdate is returned when a partial update names no fields.
	ErrEmptyUpdate = errors.New("update contains no fields")
)
