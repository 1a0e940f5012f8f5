package entities

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists signals a unique-constraint violation on an
	// artifact write. Stages treat it as an idempotency signal from a
	// duplicate job delivery, not a hard failure.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrIllegalTransition is returned when a status update names a
	// transition outside the legal-transition table.
	ErrIllegalTransition = errors.New("illegal status transition")
)
