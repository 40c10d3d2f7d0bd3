package gazetracker

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"
)

func TestAffine_Solve(t *testing.T) {
	src := [3]Point{Pt(0, 0), Pt(10, 0), Pt(0, 10)}
	dst := [3]Point{Pt(5, 5), Pt(25, 5), Pt(5, 25)}

	m, err := affineFromTriangles(src, dst)
	require.NoError(t, err)

	want := f64.Aff3{2, 0, 5, 0, 2, 5}
	for i := range want {
		assert.InDelta(t, want[i], m[i], 1e-9)
	}
}

func TestAffine_Degenerate(t *testing.T) {
	src := [3]Point{Pt(50, 40), Pt(50, 50), Pt(50, 50)}
	dst := [3]Point{Pt(2, 0), Pt(2, 10), Pt(38, 10)}

	_, err := affineFromTriangles(src, dst)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestAffine_WarpOutsideIsBlack(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 10, 10))
	fill(frame, 200)
	dst := image.NewGray(image.Rect(0, 0, 20, 20))
	fill(dst, 33)

	warpAffine(dst, frame, f64.Aff3{1, 0, 0, 0, 1, 0})

	assert.InDelta(t, 200, int(dst.GrayAt(5, 5).Y), 1)
	assert.Equal(t, uint8(0), dst.GrayAt(15, 15).Y)
	assert.Equal(t, uint8(0), dst.GrayAt(19, 0).Y)
}
