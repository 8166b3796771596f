package pose

import "errors"

// ErrAngleOutOfRange is returned for non-finite angles or angles beyond ±180°.
var ErrAngleOutOfRange = errors.New("euler angle out of range")
