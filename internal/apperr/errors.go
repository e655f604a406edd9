// Package apperr defines the sentinel errors shared across Raido services.
package apperr

import "errors"

var (
	// ErrNotFound reports that a section, row, or header does not exist at
	// call time. Row positions go stale after any structural mutation, so
	// callers are expected to re-list rather than retry.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports rejected user input, such as an empty field list.
	ErrValidation = errors.New("validation failed")

	// ErrExternal reports a failed call to an external collaborator
	// (spreadsheet or calendar service). Never fatal to the session.
	ErrExternal = errors.New("external service failure")

	// ErrAlreadyExists reports an attempt to create a section that already exists.
	ErrAlreadyExists = errors.New("already exists")
)
