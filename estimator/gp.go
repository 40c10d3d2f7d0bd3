// Package estimator implements gaze estimators for the tracking core.
package estimator

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ofZach/EyeWriterCam/gazetracker"
)

// ErrNoExamples is returned by Fit when no calibration example was added.
var ErrNoExamples = errors.New("no calibration examples")

// GP is a Gaussian process regressor from combined eye images to display
// coordinates, using a squared exponential kernel over the pixel
// intensities scaled to [0, 1]. It is not safe for concurrent use.
type GP struct {
	// LengthScale of the kernel. Zero picks the median distance between
	// the training images at fit time.
	LengthScale float64
	// SignalVariance is the kernel amplitude.
	SignalVariance float64
	// Noise is the observation noise variance on the normalized targets.
	Noise float64

	inputs  [][]float64
	targets []gazetracker.Point

	size   image.Point
	mean   gazetracker.Point
	alpha  *mat.Dense
	length float64
	fitted bool
}

var _ gazetracker.Estimator = (*GP)(nil)

// NewGP returns a GP with its default hyper-parameters.
func NewGP() *GP {
	return &GP{
		SignalVariance: 1,
		Noise:          0.01,
	}
}

// Reset implements gazetracker.Estimator.
func (g *GP) Reset() {
	g.inputs = nil
	g.targets = nil
	g.alpha = nil
	g.fitted = false
}

// AddExample implements gazetracker.Estimator. A fitted model is
// discarded until the next Fit.
func (g *GP) AddExample(eye *image.Gray, x, y float64) {
	g.fitted = false
	g.inputs = append(g.inputs, features(eye))
	g.targets = append(g.targets, gazetracker.Pt(x, y))
}

// Len returns the number of accumulated examples.
func (g *GP) Len() int { return len(g.inputs) }

// Fit implements gazetracker.Estimator. The targets are normalized by the
// display size and centered before the kernel system is solved.
func (g *GP) Fit(width, height int) error {
	g.fitted = false
	n := len(g.inputs)
	if n == 0 {
		return ErrNoExamples
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", width, height)
	}
	for _, in := range g.inputs[1:] {
		if len(in) != len(g.inputs[0]) {
			return fmt.Errorf("eye images of different sizes: %d and %d pixels", len(in), len(g.inputs[0]))
		}
	}

	g.size = image.Pt(width, height)
	g.length = g.LengthScale
	if g.length <= 0 {
		g.length = medianDistance(g.inputs)
	}

	var mean gazetracker.Point
	for _, t := range g.targets {
		mean = mean.Add(g.normalize(t))
	}
	g.mean = mean.Mul(1 / float64(n))

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := g.kernel(g.inputs[i], g.inputs[j])
			if i == j {
				v += g.Noise
			}
			k.SetSym(i, j, v)
		}
	}
	y := mat.NewDense(n, 2, nil)
	for i, t := range g.targets {
		p := g.normalize(t).Sub(g.mean)
		y.Set(i, 0, p.X)
		y.Set(i, 1, p.Y)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return fmt.Errorf("kernel matrix of %d examples is not positive definite", n)
	}
	g.alpha = mat.NewDense(n, 2, nil)
	if err := chol.SolveTo(g.alpha, y); err != nil {
		return fmt.Errorf("solve kernel system: %w", err)
	}
	g.fitted = true
	return nil
}

// Estimate implements gazetracker.Estimator and returns the predictive
// mean in display pixels.
func (g *GP) Estimate(eye *image.Gray) (float64, float64, error) {
	if !g.fitted {
		return 0, 0, gazetracker.ErrNotFitted
	}
	x := features(eye)
	if len(x) != len(g.inputs[0]) {
		return 0, 0, fmt.Errorf("eye image has %d pixels, trained on %d", len(x), len(g.inputs[0]))
	}
	var p gazetracker.Point
	for i, in := range g.inputs {
		k := g.kernel(x, in)
		p.X += k * g.alpha.At(i, 0)
		p.Y += k * g.alpha.At(i, 1)
	}
	p = p.Add(g.mean)
	return p.X * float64(g.size.X), p.Y * float64(g.size.Y), nil
}

func (g *GP) normalize(p gazetracker.Point) gazetracker.Point {
	return gazetracker.Pt(p.X/float64(g.size.X), p.Y/float64(g.size.Y))
}

func (g *GP) kernel(a, b []float64) float64 {
	return g.SignalVariance * math.Exp(-sqDist(a, b)/(2*g.length*g.length))
}

func features(eye *image.Gray) []float64 {
	w, h := eye.Rect.Dx(), eye.Rect.Dy()
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		row := eye.Pix[y*eye.Stride : y*eye.Stride+w]
		for _, v := range row {
			out = append(out, float64(v)/255)
		}
	}
	return out
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// medianDistance returns the median euclidean distance between distinct
// inputs, or 1 when there is nothing to measure.
func medianDistance(inputs [][]float64) float64 {
	var ds []float64
	for i := range inputs {
		for j := i + 1; j < len(inputs); j++ {
			if d := math.Sqrt(sqDist(inputs[i], inputs[j])); d > 0 {
				ds = append(ds, d)
			}
		}
	}
	if len(ds) == 0 {
		return 1
	}
	sort.Float64s(ds)
	return ds[len(ds)/2]
}
