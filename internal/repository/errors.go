package repository

import "errors"

// Sentinel errors wrapped by every store so handlers can map them to
// HTTP statuses without string matching.
var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id format")
)
