//go:build gocv

package source

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultKind is the frame source used when none is selected.
const DefaultKind = "webcam"

// Webcam captures frames from a camera through OpenCV.
type Webcam struct {
	vc   *gocv.VideoCapture
	bgr  gocv.Mat
	gray gocv.Mat
	size image.Point
}

// OpenWebcam opens the camera with the given device index.
func OpenWebcam(device int) (*Webcam, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open webcam %d: %w", device, err)
	}
	w := &Webcam{
		vc:   vc,
		bgr:  gocv.NewMat(),
		gray: gocv.NewMat(),
		size: image.Pt(
			int(vc.Get(gocv.VideoCaptureFrameWidth)),
			int(vc.Get(gocv.VideoCaptureFrameHeight)),
		),
	}
	return w, nil
}

// Size implements Source.
func (w *Webcam) Size() image.Point { return w.size }

// Next implements Source.
func (w *Webcam) Next(ctx context.Context) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := w.vc.Read(&w.bgr); !ok {
		return nil, errors.New("webcam closed")
	}
	if w.bgr.Empty() {
		return nil, errors.New("webcam returned an empty frame")
	}
	gocv.CvtColor(w.bgr, &w.gray, gocv.ColorBGRToGray)

	img, err := w.gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert webcam frame: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected webcam frame type %T", img)
	}
	return gray, nil
}

// Close implements Source.
func (w *Webcam) Close() error {
	w.bgr.Close()
	w.gray.Close()
	return w.vc.Close()
}
