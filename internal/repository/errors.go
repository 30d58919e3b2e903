package repository

import "errors"

var (
	// ErrNotFound is returned when an operation targets a row that does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert violates a uniqueness
	// constraint.
	ErrConflict = errors.New("already exists")
)
