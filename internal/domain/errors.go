package domain

import "errors"

var (
	// ErrInvalidGenerationRequest is returned when a generation request has a
	// non-positive record count or a malformed weight table. No partial
	// collection is ever returned alongside it.
	ErrInvalidGenerationRequest = errors.New("invalid generation request")

	// ErrMalformedFilterSpec is returned when filter input cannot be parsed,
	// for example a date bound that is not YYYY-MM-DD.
	ErrMalformedFilterSpec = errors.New("malformed filter specification")
)
