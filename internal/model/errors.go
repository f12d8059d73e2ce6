package model

import (
	"errors"
	"fmt"
)

// Ingestion errors. Sheet and constraint errors are fatal for a run; the
// others reject a single shape.
var (
	// ErrInvalidGeometry wraps every geometry rejection; see GeometryError.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidSheet means a non-positive or non-finite sheet size.
	ErrInvalidSheet = errors.New("invalid sheet")
	// ErrInvalidConstraint means an unusable gap or rotation setting.
	ErrInvalidConstraint = errors.New("invalid constraint")
	// ErrDuplicateID rejects a shape whose ID was already taken.
	ErrDuplicateID = errors.New("duplicate shape id")
	// ErrInvalidShapeSpec means a spec describes no polygon or shorthand.
	ErrInvalidShapeSpec = errors.New("invalid shape description")
)

// GeometryError reports a shape rejected at ingestion. It matches both
// ErrInvalidGeometry and the underlying geometry error with errors.Is.
type GeometryError struct {
	ShapeID string
	Err     error
}

// Error reports the shape and the geometry problem.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("shape %q: %v: %v", e.ShapeID, ErrInvalidGeometry, e.Err)
}

// Unwrap exposes ErrInvalidGeometry and the underlying geometry error.
func (e *GeometryError) Unwrap() []error {
	return []error{ErrInvalidGeometry, e.Err}
}

// Rejection is one entry of the rejected-input report.
type Rejection struct {
	ShapeID string `json:"shape_id"`
	Reason  string `json:"reason"`
	Err     error  `json:"-"`
}
