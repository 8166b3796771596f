package repository

import "errors"

// Sentinel kinds for alert log errors.
var (
	ErrInvalidLimit = errors.New("invalid alert log limit")
	ErrClosed       = errors.New("alert log closed")
	ErrMalformed    = errors.New("malformed alert log line")
)
