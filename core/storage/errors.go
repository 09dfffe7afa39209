package storage

import "errors"

var (
	ErrClosed   = errors.New("storage: database is closed")
	ErrNotFound = errors.New("storage: key not found")
)
