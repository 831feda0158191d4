package locker

import "errors"

var (
	// ErrNotFound is returned when a key or object key does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPathEscape is returned when a resolved path leaves its sandbox
	ErrPathEscape = errors.New("path escapes sandbox")
	// ErrInvalidPrefix is returned when an image prefix is not alphanumeric
	ErrInvalidPrefix = errors.New("invalid image prefix")
	// ErrInvalidFormat is returned when an image filename or extension is not allowed
	ErrInvalidFormat = errors.New("invalid image format")
)
