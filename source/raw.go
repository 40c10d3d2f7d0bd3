package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
)

// Raw reads headerless 8-bit grayscale frames of a fixed size from a
// stream, as written by a GStreamer pipeline ending in
// "video/x-raw,format=GRAY8 ! fdsink".
type Raw struct {
	r    io.ReadCloser
	size image.Point
}

// NewRaw creates a raw source of w×h frames.
func NewRaw(r io.ReadCloser, w, h int) (*Raw, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid raw frame size %dx%d", w, h)
	}
	return &Raw{r: r, size: image.Pt(w, h)}, nil
}

// Size implements Source.
func (r *Raw) Size() image.Point { return r.size }

// Next implements Source. A stream ending between two frames yields
// io.EOF; one ending inside a frame yields io.ErrUnexpectedEOF.
func (r *Raw) Next(ctx context.Context) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, r.size.X, r.size.Y))
	if _, err := io.ReadFull(r.r, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read raw frame: %w", err)
	}
	return img, nil
}

// Close implements Source.
func (r *Raw) Close() error {
	return r.r.Close()
}
