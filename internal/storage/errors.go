package storage

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("storage closed")
)
