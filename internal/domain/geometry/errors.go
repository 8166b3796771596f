package geometry

import "errors"

// Sentinel errors for landmark validation.
var (
	ErrLandmarkCount = errors.New("wrong landmark count")
	ErrNonFinite     = errors.New("non-finite landmark coordinate")
	ErrDegenerate    = errors.New("degenerate eye or mouth contour")
)
