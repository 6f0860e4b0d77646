package domain

import "errors"

// Common domain errors
var (
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrNoBaseURI        = errors.New("elucidation base URI is not available")
	ErrUnknownDirection = errors.New("unknown event direction")
)
