package store

import "errors"

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store closed")
)
