package services

import "errors"

var (
	// ErrNotFound covers both missing rows and rows owned by someone else;
	// callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the request cannot be acted on as given and the
	// caller should be asked to clarify.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict aborts an operation that would overwrite live state, such
	// as merging into an already-claimed identity.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable is an infrastructure failure; nothing was committed.
	ErrUnavailable = errors.New("unavailable")
)
