package replay

import "errors"

var (
	// ErrUnknownScenario is returned for a scenario name that is not built in.
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrUnhealthy is returned when the server health check fails.
	ErrUnhealthy = errors.New("server unhealthy")

	// ErrBadFrameLine is returned for an unparsable line in a frames file.
	ErrBadFrameLine = errors.New("bad frame line")

	// ErrExpectation is returned when the server did not alert as expected.
	ErrExpectation = errors.New("expectation not met")

	// ErrNoFrames is returned when there is nothing to submit.
	ErrNoFrames = errors.New("no frames")
)
