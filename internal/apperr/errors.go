package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidMode  = errors.New("invalid view mode")
	ErrInvalidInput = errors.New("invalid input")
)
