package gazetracker

import "errors"

// The tracking core never treats these as fatal. A tick that hits one of
// them skips its contribution and the next frame gets a fresh attempt.
var (
	// ErrNoFace is returned by a ShapeFitter when no face could be fitted.
	ErrNoFace = errors.New("no face detected")
	// ErrOutOfBounds is returned when an eye corner is too close to the
	// frame edge to hold a full search window.
	ErrOutOfBounds = errors.New("eye corner outside the tracking bounds")
	// ErrCornersUnset is returned when patch extraction runs before all
	// four eye corners are known.
	ErrCornersUnset = errors.New("eye corners are not set")
	// ErrNotFitted is returned by an Estimator queried before Fit.
	ErrNotFitted = errors.New("gaze estimator is not fitted")
	// ErrDegenerateGeometry is returned when the eye corners do not span
	// a valid affine triangle.
	ErrDegenerateGeometry = errors.New("degenerate eye geometry")
)
