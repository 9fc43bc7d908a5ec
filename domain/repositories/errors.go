package repositories

import "errors"

// ErrNotFound is returned when a live record does not exist.
var ErrNotFound = errors.New("record not found")
