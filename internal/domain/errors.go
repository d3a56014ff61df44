package domain

import "errors"

// ErrNotFound and ErrConflict are the two backend-agnostic error kinds the
// storage port may return. Any other error is treated as a backend error
// by the caller.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
