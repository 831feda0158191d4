package http

import "errors"

// ErrBadRequest is returned when a request body cannot be decoded or fails
// validation.
var ErrBadRequest = errors.New("bad request")
