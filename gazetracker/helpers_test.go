package gazetracker

import (
	"image"
	"image/color"
	"math/rand"
	"time"
)

type fakeFitter struct {
	points []image.Point
	err    error
	calls  int
	size   image.Point
}

func (f *fakeFitter) Fit(frame *image.Gray) ([]image.Point, error) {
	f.calls++
	f.size = frame.Bounds().Size()
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

type fakeEstimator struct {
	targets []Point
	resets  int
	fitted  bool
	fitErr  error
	fitSize image.Point
	gaze    Point
}

func (e *fakeEstimator) Reset() {
	e.resets++
	e.targets = nil
	e.fitted = false
}

func (e *fakeEstimator) AddExample(eye *image.Gray, x, y float64) {
	e.targets = append(e.targets, Pt(x, y))
}

func (e *fakeEstimator) Fit(width, height int) error {
	e.fitSize = image.Pt(width, height)
	if e.fitErr != nil {
		return e.fitErr
	}
	e.fitted = true
	return nil
}

func (e *fakeEstimator) Estimate(eye *image.Gray) (float64, float64, error) {
	if !e.fitted {
		return 0, 0, ErrNotFitted
	}
	return e.gaze.X, e.gaze.Y, nil
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2011, 1, 25, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Add(d time.Duration) { c.t = c.t.Add(d) }

// texture returns a deterministic noise image.
func texture(w, h int, seed int64) *image.Gray {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rnd.Intn(256))
	}
	return img
}

func fill(img *image.Gray, v uint8) {
	for i := range img.Pix {
		img.Pix[i] = v
	}
}

// fitterAt returns a fitter reporting the given full resolution corners
// for a detection scale of 0.5.
func fitterAt(corners [NumCorners]image.Point) *fakeFitter {
	pts := []image.Point{{}, {}}
	for _, c := range corners {
		pts = append(pts, c.Div(2))
	}
	return &fakeFitter{points: pts}
}

var defaultCorners = [NumCorners]image.Point{{100, 120}, {140, 120}, {180, 120}, {220, 120}}

func grayOf(v uint8) color.Gray { return color.Gray{Y: v} }
