//go:build gocv

package gazetracker

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// matchTemplate computes the normalized correlation coefficient of tmpl at
// every placement inside search with OpenCV. The response map has
// (sw-tw+1)×(sh-th+1) entries in row-major order, each in [-1, 1].
func matchTemplate(search, tmpl *image.Gray) ([]float64, int, int) {
	rw := search.Rect.Dx() - tmpl.Rect.Dx() + 1
	rh := search.Rect.Dy() - tmpl.Rect.Dy() + 1
	if rw <= 0 || rh <= 0 {
		return nil, 0, 0
	}
	res := make([]float64, rw*rh)

	src, err := matFromGray(search)
	if err != nil {
		return res, rw, rh
	}
	defer src.Close()
	tm, err := matFromGray(tmpl)
	if err != nil {
		return res, rw, rh
	}
	defer tm.Close()

	out := gocv.NewMat()
	defer out.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(src, tm, &out, gocv.TmCcoeffNormed, mask)

	for y := 0; y < rh; y++ {
		for x := 0; x < rw; x++ {
			v := float64(out.GetFloatAt(y, x))
			if math.IsNaN(v) {
				continue
			}
			res[y*rw+x] = math.Max(-1, math.Min(1, v))
		}
	}
	return res, rw, rh
}
