package notify

import "errors"

// Sentinel errors for alert delivery.
var (
	ErrNoCommand     = errors.New("notifier command not configured")
	ErrCommandFailed = errors.New("notifier command failed")
	ErrPublish       = errors.New("mqtt publish failed")
	ErrConnect       = errors.New("mqtt connect failed")
)
