package detector

import "errors"

// ErrInvalidFrame is returned for frames the engine refuses to process.
// The detection state is not modified when it is returned.
var ErrInvalidFrame = errors.New("invalid frame")
