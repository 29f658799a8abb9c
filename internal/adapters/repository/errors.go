package repository

import "errors"

var (
	// ErrNotFound indicates the requested run does not exist in the store.
	ErrNotFound = errors.New("run not found")

	// ErrEmptyRunID indicates a lookup with a blank run id.
	ErrEmptyRunID = errors.New("run id must not be empty")
)
