package store

import "errors"

// ErrConflict is returned when an insert reuses an existing or empty id.
var ErrConflict = errors.New("conflict")
