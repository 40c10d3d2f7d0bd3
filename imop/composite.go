// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// The image/draw package implements only the source-over-destination and
// source operators; this package covers the remaining ones.
//
// It is used to lay the diagnostic markers, the gaze cursor and the
// calibration target over the camera frame.
package imop

import (
	"image"
	"image/color"
	"math"
)

// Op is a Porter-Duff composition operator.
type Op int

// The supported composition operators.
const (
	Clear Op = iota
	Copy
	Dst
	SrcOver
	DstOver
	SrcIn
	DstIn
	SrcOut
	DstOut
	SrcAtop
	DstAtop
	Xor
)

var opNames = map[Op]string{
	Clear:   "clear",
	Copy:    "copy",
	Dst:     "dst",
	SrcOver: "src_over",
	DstOver: "dst_over",
	SrcIn:   "src_in",
	DstIn:   "dst_in",
	SrcOut:  "src_out",
	DstOut:  "dst_out",
	SrcAtop: "src_atop",
	DstAtop: "dst_atop",
	Xor:     "xor",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "unknown"
}

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap of the given size.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operator.
type Composite struct {
	current Op
}

// InitOp returns a Composite using SrcOver.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates the operator. Unknown operators are ignored.
func (c *Composite) Set(op Op) {
	if _, ok := opNames[op]; ok {
		c.current = op
	}
}

// Get returns the active operator.
func (c *Composite) Get() Op {
	return c.current
}

// Draw composes src with dst into bitmap, pixel by pixel over the bounds
// of src. With a blend mode the source color is first mixed with the
// backdrop color. A nil bitmap makes Draw write into dst.
func (c *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	out := dst
	if bitmap != nil {
		out = bitmap.Img
	}
	b := src.Bounds().Intersect(dst.Bounds()).Intersect(out.Bounds())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := normalize(src.NRGBAAt(x, y))
			d := normalize(dst.NRGBAAt(x, y))
			if blend != nil && blend.Mode != None {
				s = blend.mix(d, s)
			}
			out.SetNRGBA(x, y, c.compose(s, d).nrgba())
		}
	}
}

// pixel is a straight (non premultiplied) color with components in [0, 1].
type pixel struct {
	r, g, b, a float64
}

func normalize(c color.NRGBA) pixel {
	return pixel{
		r: float64(c.R) / 255,
		g: float64(c.G) / 255,
		b: float64(c.B) / 255,
		a: float64(c.A) / 255,
	}
}

func (p pixel) nrgba() color.NRGBA {
	q := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.NRGBA{R: q(p.r), G: q(p.g), B: q(p.b), A: q(p.a)}
}

// compose applies the Porter-Duff equations. Each operator is defined by
// the fraction fs of the source and fd of the destination that survives.
func (c *Composite) compose(s, d pixel) pixel {
	var fs, fd float64
	switch c.current {
	case Clear:
		return pixel{}
	case Copy:
		fs, fd = 1, 0
	case Dst:
		fs, fd = 0, 1
	case SrcOver:
		fs, fd = 1, 1-s.a
	case DstOver:
		fs, fd = 1-d.a, 1
	case SrcIn:
		fs, fd = d.a, 0
	case DstIn:
		fs, fd = 0, s.a
	case SrcOut:
		fs, fd = 1-d.a, 0
	case DstOut:
		fs, fd = 0, 1-s.a
	case SrcAtop:
		fs, fd = d.a, 1-s.a
	case DstAtop:
		fs, fd = 1-d.a, s.a
	case Xor:
		fs, fd = 1-d.a, 1-s.a
	}

	a := s.a*fs + d.a*fd
	if a == 0 {
		return pixel{}
	}
	return pixel{
		r: (s.a*fs*s.r + d.a*fd*d.r) / a,
		g: (s.a*fs*s.g + d.a*fd*d.g) / a,
		b: (s.a*fs*s.b + d.a*fd*d.b) / a,
		a: a,
	}
}
