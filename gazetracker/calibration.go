package gazetracker

import (
	"fmt"
	"image"
	"time"
)

// CalibrationPhase is the state of the calibration controller.
type CalibrationPhase int

const (
	// CalibrationIdle means no calibration is running.
	CalibrationIdle CalibrationPhase = iota
	// CalibrationActive means a target is shown and its radius shrinks.
	CalibrationActive
	// CalibrationCaptured is reported on the tick a sample was captured.
	CalibrationCaptured
	// CalibrationComplete means every target was captured and the
	// estimator was fitted.
	CalibrationComplete
)

func (p CalibrationPhase) String() string {
	switch p {
	case CalibrationIdle:
		return "idle"
	case CalibrationActive:
		return "active"
	case CalibrationCaptured:
		return "captured"
	case CalibrationComplete:
		return "complete"
	}
	return fmt.Sprintf("CalibrationPhase(%d)", int(p))
}

// CalibrationState is the calibration part of the tracking state.
type CalibrationState struct {
	Phase   CalibrationPhase
	Targets []Point
	Index   int
	Radius  float64
	Display image.Point
	// Archive keeps a copy of every captured eye image.
	Archive []*image.Gray
}

// Target returns the current target, or false once all were captured.
func (c *CalibrationState) Target() (Point, bool) {
	if c.Index < 0 || c.Index >= len(c.Targets) {
		return Point{}, false
	}
	return c.Targets[c.Index], true
}

// Calibrator drives the calibration session: it shrinks the target radius
// over time and pairs the current eye image with the current target each
// time the radius runs out. Captures are timer driven and never skipped.
type Calibrator struct {
	cfg Config
}

// NewCalibrator creates a Calibrator.
func NewCalibrator(cfg Config) *Calibrator {
	return &Calibrator{cfg: cfg}
}

// Targets returns the calibration targets for a w×h display: the grid in
// row-major order followed by the top-left, top-right, bottom-left and
// bottom-right corners.
func (c *Calibrator) Targets(w, h int) []Point {
	rows, cols, m := c.cfg.GridRows, c.cfg.GridCols, c.cfg.GridMargin
	gw := (float64(w) - 2*m) / float64(cols-1)
	gh := (float64(h) - 2*m) / float64(rows-1)

	pts := make([]Point, 0, rows*cols+4)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pts = append(pts, Pt(m+float64(x)*gw, m+float64(y)*gh))
		}
	}
	return append(pts,
		Pt(m, m),
		Pt(float64(w)-m, m),
		Pt(m, float64(h)-m),
		Pt(float64(w)-m, float64(h)-m),
	)
}

// Start begins a new session on a w×h display. The estimator examples
// and the eye archive are dropped.
func (c *Calibrator) Start(s *State, w, h int, est Estimator) {
	cs := &s.Calibration
	cs.Phase = CalibrationActive
	cs.Targets = c.Targets(w, h)
	cs.Index = 0
	cs.Radius = c.cfg.RadiusMax
	cs.Display = image.Pt(w, h)
	cs.Archive = nil
	est.Reset()
}

// Stop abandons the running session.
func (c *Calibrator) Stop(s *State) {
	s.Calibration.Phase = CalibrationIdle
}

// Advance moves the session forward by dt. When the radius reaches zero
// the combined eye image is handed to the estimator along with the
// current target. After the last target the estimator is fitted and
// CalibrationComplete is returned, together with the fit error if any.
func (c *Calibrator) Advance(s *State, dt time.Duration, est Estimator) (CalibrationPhase, error) {
	cs := &s.Calibration
	if cs.Phase != CalibrationActive && cs.Phase != CalibrationCaptured {
		return cs.Phase, nil
	}
	cs.Phase = CalibrationActive
	if dt > 0 {
		cs.Radius -= c.cfg.RadiusSpeed * dt.Seconds()
	}
	if cs.Radius > 0 {
		return cs.Phase, nil
	}

	target, _ := cs.Target()
	cs.Archive = append(cs.Archive, cloneGray(s.Eyes))
	est.AddExample(s.Eyes, target.X, target.Y)
	cs.Index++
	cs.Radius = c.cfg.RadiusMax
	cs.Phase = CalibrationCaptured

	if cs.Index < len(cs.Targets) {
		return cs.Phase, nil
	}
	cs.Phase = CalibrationComplete
	if err := est.Fit(cs.Display.X, cs.Display.Y); err != nil {
		return cs.Phase, fmt.Errorf("fit gaze estimator on %d samples: %w", len(cs.Archive), err)
	}
	return cs.Phase, nil
}
