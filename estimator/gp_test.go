package estimator

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofZach/EyeWriterCam/gazetracker"
)

const displayW, displayH = 1280, 800

// eyeLooking renders a synthetic combined eye image whose iris blob moves
// with the gaze point.
func eyeLooking(x, y float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 80, 20))
	for _, half := range []float64{0, 40} {
		cx := half + 8 + x/displayW*24
		cy := 4 + y/displayH*12
		for py := 0; py < 20; py++ {
			for px := int(half); px < int(half)+40; px++ {
				d2 := (float64(px)-cx)*(float64(px)-cx) + (float64(py)-cy)*(float64(py)-cy)
				img.Pix[py*img.Stride+px] = uint8(255 - 200*math.Exp(-d2/18))
			}
		}
	}
	return img
}

func train(t *testing.T, g *GP) []gazetracker.Point {
	t.Helper()
	var pts []gazetracker.Point
	for gy := 0; gy < 4; gy++ {
		for gx := 0; gx < 4; gx++ {
			p := gazetracker.Pt(10+float64(gx)*(displayW-20)/3, 10+float64(gy)*(displayH-20)/3)
			g.AddExample(eyeLooking(p.X, p.Y), p.X, p.Y)
			pts = append(pts, p)
		}
	}
	require.NoError(t, g.Fit(displayW, displayH))
	return pts
}

func TestGP_NotFitted(t *testing.T) {
	g := NewGP()
	_, _, err := g.Estimate(eyeLooking(0, 0))
	assert.True(t, errors.Is(err, gazetracker.ErrNotFitted))
	assert.True(t, errors.Is(g.Fit(displayW, displayH), ErrNoExamples))
}

func TestGP_RecoversTrainingTargets(t *testing.T) {
	g := NewGP()
	pts := train(t, g)
	assert.Equal(t, 16, g.Len())

	for _, p := range pts {
		x, y, err := g.Estimate(eyeLooking(p.X, p.Y))
		require.NoError(t, err)
		assert.InDelta(t, p.X, x, 0.1*displayW)
		assert.InDelta(t, p.Y, y, 0.1*displayH)
	}
}

func TestGP_Interpolates(t *testing.T) {
	g := NewGP()
	train(t, g)

	x, y, err := g.Estimate(eyeLooking(640, 400))
	require.NoError(t, err)
	assert.InDelta(t, 640, x, 0.15*displayW)
	assert.InDelta(t, 400, y, 0.15*displayH)
}

func TestGP_Reset(t *testing.T) {
	g := NewGP()
	train(t, g)

	g.Reset()
	assert.Zero(t, g.Len())
	_, _, err := g.Estimate(eyeLooking(0, 0))
	assert.True(t, errors.Is(err, gazetracker.ErrNotFitted))
}

func TestGP_AddAfterFit(t *testing.T) {
	g := NewGP()
	train(t, g)

	g.AddExample(eyeLooking(100, 100), 100, 100)
	_, _, err := g.Estimate(eyeLooking(100, 100))
	assert.True(t, errors.Is(err, gazetracker.ErrNotFitted))

	require.NoError(t, g.Fit(displayW, displayH))
	assert.Equal(t, 17, g.Len())
	x, y, err := g.Estimate(eyeLooking(100, 100))
	require.NoError(t, err)
	assert.InDelta(t, 100, x, 0.1*displayW)
	assert.InDelta(t, 100, y, 0.1*displayH)
}

func TestGP_SizeMismatch(t *testing.T) {
	g := NewGP()
	g.AddExample(eyeLooking(0, 0), 0, 0)
	g.AddExample(image.NewGray(image.Rect(0, 0, 10, 10)), 1, 1)
	assert.Error(t, g.Fit(displayW, displayH))

	g.Reset()
	train(t, g)
	_, _, err := g.Estimate(image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.Error(t, err)
}

func TestGP_Tracker(t *testing.T) {
	// GP plugs into the tracker as its estimator.
	_, err := gazetracker.NewTracker(gazetracker.DefaultConfig(), fitterFunc(nil), NewGP(), image.Pt(displayW, displayH))
	assert.NoError(t, err)
}

type fitterFunc func(*image.Gray) ([]image.Point, error)

func (f fitterFunc) Fit(frame *image.Gray) ([]image.Point, error) {
	if f == nil {
		return nil, gazetracker.ErrNoFace
	}
	return f(frame)
}
