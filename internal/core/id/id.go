// Package id provides identifier generation for field definitions, options
// and value records.
package id

import (
	"github.com/google/uuid"
)

// ID is the opaque identifier used by every stored record.
type ID = uuid.UUID

// Nil is the zero identifier.
var Nil = uuid.Nil

// New generates a time-ordered UUIDv7. Sorting by ID therefore follows
// insertion order, which the store relies on for stable tie-breaking.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts a string to ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil checks if ID is the zero value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
