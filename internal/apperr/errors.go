// Package apperr defines the error kinds shared across the modeler.
package apperr

import (
	stderrors "errors"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrNotFound is returned when a named group, connection or table is absent.
	ErrNotFound = errors.NewKind("%s %q not found")
	// ErrNameConflict is returned when creating something under a name already in use.
	ErrNameConflict = errors.NewKind("%s %q already exists")
	// ErrUnresolvedParent is returned when an attribute names a parent that has not been built.
	ErrUnresolvedParent = errors.NewKind("attribute %q references unresolved parent attribute %q")
	// ErrMissingColumn is returned when an annotation references a column absent from the bound table.
	ErrMissingColumn = errors.NewKind("column %q not found in table %q")
	// ErrStoreFailure wraps failures of the metadata store itself.
	ErrStoreFailure = errors.NewKind("metadata store: %s")
	// ErrInvalid is returned when an annotation, group or connection fails validation.
	ErrInvalid = errors.NewKind("invalid %s: %s")
)

// Is reports whether err, or any error it wraps, is of the given kind.
// Both Unwrap and Cause chains are followed.
func Is(err error, kind *errors.Kind) bool {
	for err != nil {
		if kind.Is(err) {
			return true
		}
		next := stderrors.Unwrap(err)
		if next == nil {
			if c, ok := err.(interface{ Cause() error }); ok {
				next = c.Cause()
			}
		}
		err = next
	}
	return false
}
