//go:build !gocv

package gazetracker

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// bilateral is an edge preserving smoothing filter over a square kernel
// restricted to a disc of the given radius.
type bilateral struct {
	radius     int
	spaceW     []float64
	colorW     [256]float64
	offsets    []image.Point
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
	gs := -0.5 / (sigmaSpace * sigmaSpace)
	gc := -0.5 / (sigmaColor * sigmaColor)
	for i := range b.colorW {
		b.colorW[i] = math.Exp(float64(i*i) * gc)
	}
	for dy := -b.radius; dy <= b.radius; dy++ {
		for dx := -b.radius; dx <= b.radius; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > float64(b.radius) {
				continue
			}
			b.offsets = append(b.offsets, image.Pt(dx, dy))
			b.spaceW = append(b.spaceW, math.Exp(d*d*gs))
		}
	}
	return b
}

// apply filters src into dst. Both images must have the same bounds.
// Neighbours falling outside the image are ignored.
func (b *bilateral) apply(dst, src *image.Gray) {
	r := src.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := int(src.Pix[src.PixOffset(x, y)])
			var sum, wsum float64
			for i, o := range b.offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < r.Min.X || nx >= r.Max.X || ny < r.Min.Y || ny >= r.Max.Y {
					continue
				}
				v := int(src.Pix[src.PixOffset(nx, ny)])
				d := v - c
				if d < 0 {
					d = -d
				}
				w := b.spaceW[i] * b.colorW[d]
				sum += w * float64(v)
				wsum += w
			}
			dst.Pix[dst.PixOffset(x, y)] = uint8(math.Round(sum / wsum))
		}
	}
}

// equalizeHist spreads the intensity histogram of img over the full
// 0..255 range in place. An image with a single intensity is left as is.
func equalizeHist(img *image.Gray) {
	hist := imaging.Histogram(img)

	first := 0
	for first < len(hist) && hist[first] == 0 {
		first++
	}
	if first == len(hist) || hist[first] >= 1-1e-9 {
		return
	}
	h0 := hist[first]
	scale := 255 / (1 - h0)

	var lut [256]uint8
	var cdf float64
	for i := first + 1; i < len(hist); i++ {
		cdf += hist[i]
		lut[i] = uint8(math.Round(math.Min(cdf*scale, 255)))
	}
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
}
