package status

import "errors"

var (
	ErrMissingConfig = errors.New("config: required value not set")
	ErrNotFound      = errors.New("backend: record not found")
	ErrConflict      = errors.New("backend: record was modified by someone else")
	ErrInvalidInput  = errors.New("input: validation failed")
	ErrUnauthorized  = errors.New("auth: not authorized")
)
