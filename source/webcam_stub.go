//go:build !gocv

package source

import (
	"context"
	"errors"
	"image"
)

// DefaultKind is the frame source used when none is selected. Without
// OpenCV frames are read as a raw GRAY8 stream from stdin.
const DefaultKind = "raw"

// errNoGocv is returned when the binary was built without the gocv tag.
var errNoGocv = errors.New("webcam capture needs a build with -tags gocv")

// Webcam is unavailable without OpenCV.
type Webcam struct{}

// OpenWebcam always fails without the gocv build tag.
func OpenWebcam(device int) (*Webcam, error) {
	return nil, errNoGocv
}

// Size implements Source.
func (*Webcam) Size() image.Point { return image.Point{} }

// Next implements Source.
func (*Webcam) Next(ctx context.Context) (*image.Gray, error) {
	return nil, errNoGocv
}

// Close implements Source.
func (*Webcam) Close() error { return nil }
