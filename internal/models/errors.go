package models

import "errors"

// Sentinel errors shared by the models, the repositories and the arena.
var (
	// ErrNotFound means the id is absent or soft-deleted in the store.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means an attribute or argument failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
