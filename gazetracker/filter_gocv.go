//go:build gocv

package gazetracker

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// bilateral is the OpenCV edge preserving smoothing filter.
type bilateral struct {
	radius     int
	sigmaColor float64
	sigmaSpace float64
}

func newBilateral(sigmaColor, sigmaSpace float64) *bilateral {
	b := &bilateral{
		radius:     int(math.RoundToEven(sigmaSpace * 1.5)),
		sigmaColor: sigmaColor,
		sigmaSpace: sigmaSpace,
	}
	if b.radius < 1 {
		b.radius = 1
	}
	return b
}

// apply filters src into dst. Both images must have the same bounds.
// The border is reflected.
func (b *bilateral) apply(dst, src *image.Gray) {
	in, err := matFromGray(src)
	if err != nil {
		pasteGray(dst, src, dst.Rect.Min)
		return
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.BilateralFilter(in, &out, 2*b.radius+1, b.sigmaColor, b.sigmaSpace)
	copyMatToGray(dst, out)
}

// equalizeHist spreads the intensity histogram of img over the full
// 0..255 range in place.
func equalizeHist(img *image.Gray) {
	in, err := matFromGray(img)
	if err != nil {
		return
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.EqualizeHist(in, &out)
	copyMatToGray(img, out)
}

// matFromGray copies img into a new single channel 8-bit Mat.
func matFromGray(img *image.Gray) (gocv.Mat, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(buf[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer m.Close()
	return m.Clone(), nil
}

// copyMatToGray writes the pixels of a single channel 8-bit Mat into dst.
func copyMatToGray(dst *image.Gray, m gocv.Mat) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	b := m.ToBytes()
	if len(b) < w*h {
		return
	}
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], b[y*w:(y+1)*w])
	}
}
