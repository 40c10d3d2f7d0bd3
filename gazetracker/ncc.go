//go:build !gocv

package gazetracker

import (
	"image"
	"math"
)

// templateStats caches the zero-mean template values and their norm.
type templateStats struct {
	w, h int
	vals []float64
	norm float64
}

func newTemplateStats(t *image.Gray) templateStats {
	w, h := t.Rect.Dx(), t.Rect.Dy()
	st := templateStats{w: w, h: h, vals: make([]float64, w*h)}

	var sum float64
	for y := 0; y < h; y++ {
		row := t.Pix[y*t.Stride : y*t.Stride+w]
		for x, v := range row {
			st.vals[y*w+x] = float64(v)
			sum += float64(v)
		}
	}
	mean := sum / float64(w*h)
	var ss float64
	for i, v := range st.vals {
		d := v - mean
		st.vals[i] = d
		ss += d * d
	}
	st.norm = math.Sqrt(ss)
	return st
}

// matchTemplate computes the normalized correlation coefficient of tmpl at
// every placement inside search. The response map has
// (sw-tw+1)×(sh-th+1) entries in row-major order, each in [-1, 1].
// Placements where either patch has no variance score 0.
func matchTemplate(search, tmpl *image.Gray) ([]float64, int, int) {
	st := newTemplateStats(tmpl)
	rw := search.Rect.Dx() - st.w + 1
	rh := search.Rect.Dy() - st.h + 1
	if rw <= 0 || rh <= 0 {
		return nil, 0, 0
	}
	res := make([]float64, rw*rh)
	n := float64(st.w * st.h)

	for oy := 0; oy < rh; oy++ {
		for ox := 0; ox < rw; ox++ {
			var sum, sum2, cross float64
			for y := 0; y < st.h; y++ {
				off := (oy+y)*search.Stride + ox
				row := search.Pix[off : off+st.w]
				tv := st.vals[y*st.w : (y+1)*st.w]
				for x, p := range row {
					v := float64(p)
					sum += v
					sum2 += v * v
					cross += v * tv[x]
				}
			}
			// The template is zero-mean so the window mean cancels out of the numerator.
			wndVar := sum2 - sum*sum/n
			denom := math.Sqrt(math.Max(wndVar, 0)) * st.norm
			if denom < 1e-9 {
				continue
			}
			res[oy*rw+ox] = cross / denom
		}
	}
	return res, rw, rh
}
