// Package repository implements the persistence layer over database/sql.
// This file defines sentinel errors reused across repositories so handlers
// can translate failures into distinct HTTP responses: ErrNotFound becomes
// 404, ErrEmailExists 409, ErrConflict 409 for dependent-state violations.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced entity does not exist.  It is
// kept distinct from validation failures so handlers can answer 404
// instead of 400.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email address
// already present in the identity store.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting existing state.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether a MySQL error is a duplicate-key violation
// (error 1062) without importing the driver's error types.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isFKViolation reports whether a MySQL error is a foreign-key restriction
// (error 1451, row still referenced by children).
func isFKViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1451")
}
