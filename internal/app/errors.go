package service

import "errors"

var (
	// ErrNotStarted is returned for frames submitted before Start or after Stop.
	ErrNotStarted = errors.New("service not started")

	// ErrStart wraps failures to bring up the alert log or notifiers.
	ErrStart = errors.New("service start failed")
)
