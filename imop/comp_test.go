package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())

	op.Set(Clear)
	assert.Equal(Clear, op.Get())

	op.Set(Op(99))
	assert.Equal(Clear, op.Get())
	assert.Equal("unknown", Op(99).String())

	op.Set(Dst)
	assert.Equal(Dst, op.Get())
	assert.Equal("dst", op.Get().String())
}

func TestComp_Ops(t *testing.T) {
	transparent := color.NRGBA{R: 0, G: 0, B: 0, A: 0}
	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}

	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)

	// The source covers the bottom-left area, the backdrop the top-right one
	// and both overlap in the center.
	draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)
	draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)

	tests := []struct {
		op         Op
		topRight   color.NRGBA
		bottomLeft color.NRGBA
		center     color.NRGBA
	}{
		{Clear, transparent, transparent, transparent},
		{Copy, transparent, cyan, cyan},
		{Dst, magenta, transparent, magenta},
		{SrcOver, magenta, cyan, cyan},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			op := InitOp()
			op.Set(tt.op)
			bmp := NewBitmap(rect)
			op.Draw(bmp, source, backdrop, nil)

			assert.Equal(t, tt.topRight, bmp.Img.NRGBAAt(9, 0))
			assert.Equal(t, tt.bottomLeft, bmp.Img.NRGBAAt(0, 9))
			assert.Equal(t, tt.center, bmp.Img.NRGBAAt(5, 5))
		})
	}
}

func TestComp_SemiTransparentOver(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	source.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 50})
	backdrop.SetNRGBA(0, 0, color.NRGBA{A: 255})

	// A nil bitmap writes the result into the backdrop.
	InitOp().Draw(nil, source, backdrop, nil)

	got := backdrop.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), got.A)
	assert.InDelta(t, 50, int(got.R), 1)
	assert.Equal(t, got.R, got.G)
	assert.Equal(t, got.G, got.B)
}
