package gazetracker

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// affineFromTriangles solves the affine transform mapping the three
// source points onto the three destination points.
func affineFromTriangles(src, dst [3]Point) (f64.Aff3, error) {
	a := mat.NewDense(3, 3, []float64{
		src[0].X, src[0].Y, 1,
		src[1].X, src[1].Y, 1,
		src[2].X, src[2].Y, 1,
	})
	if math.Abs(mat.Det(a)) < 1e-9 {
		return f64.Aff3{}, fmt.Errorf("affine solve %v: %w", src, ErrDegenerateGeometry)
	}
	b := mat.NewDense(3, 2, []float64{
		dst[0].X, dst[0].Y,
		dst[1].X, dst[1].Y,
		dst[2].X, dst[2].Y,
	})

	var coef mat.Dense
	if err := coef.Solve(a, b); err != nil {
		return f64.Aff3{}, fmt.Errorf("affine solve %v: %w", src, ErrDegenerateGeometry)
	}
	return f64.Aff3{
		coef.At(0, 0), coef.At(1, 0), coef.At(2, 0),
		coef.At(0, 1), coef.At(1, 1), coef.At(2, 1),
	}, nil
}

// warpAffine resamples frame into dst with bilinear interpolation using
// the source-to-destination transform m. Pixels that map outside the
// frame are black.
func warpAffine(dst *image.Gray, frame *image.Gray, m f64.Aff3) {
	for i := range dst.Pix {
		dst.Pix[i] = 0
	}
	draw.BiLinear.Transform(dst, m, frame, frame.Bounds(), draw.Src, nil)
}
