package gazetracker

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ofZach/EyeWriterCam/imop"
)

// Estimator maps combined eye images to display coordinates once trained
// on calibration examples.
type Estimator interface {
	// Reset drops every accumulated example and the fitted model.
	Reset()
	// AddExample records the eye image seen while looking at (x, y).
	AddExample(eye *image.Gray, x, y float64)
	// Fit trains the model for a width×height display.
	Fit(width, height int) error
	// Estimate returns the gaze point, or ErrNotFitted before Fit.
	Estimate(eye *image.Gray) (float64, float64, error)
}

// Mode is the session mode of the tracker.
type Mode int

// The tracker starts in ModeDetection. Advance rotates through the modes
// in declaration order.
const (
	ModeDetection Mode = iota
	ModeTracking
	ModeCalibration
)

func (m Mode) String() string {
	switch m {
	case ModeDetection:
		return "detection"
	case ModeTracking:
		return "tracking"
	case ModeCalibration:
		return "calibration"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Hint is the instruction shown to the user in each mode.
func (m Mode) Hint() string {
	switch m {
	case ModeDetection:
		return "Press the SPACE key to enter tracking mode"
	case ModeTracking:
		return "Press the SPACE key again to enter calibration mode"
	case ModeCalibration:
		return "Follow the shrinking circle with your eyes"
	}
	return ""
}

// State is all the mutable tracking state. It is owned by a Tracker and
// handed explicitly to every component.
type State struct {
	Mode    Mode
	Corners EyeCornerSet

	EyeHistory        [NumCorners]*History
	InitialTemplates  [NumCorners]*image.Gray
	PreviousTemplates [NumCorners]*image.Gray
	TrackingFailures  int

	// Eyes is the combined eye image.
	Eyes *image.Gray

	GazeHistory *History
	Gaze        Point
	Calibrated  bool

	Calibration CalibrationState
}

// NewState allocates a zeroed state for the given configuration.
func NewState(cfg Config) *State {
	s := &State{
		Eyes:        image.NewGray(image.Rect(0, 0, cfg.EyeImageWidth, cfg.EyeImageHeight)),
		GazeHistory: NewHistory(cfg.GazeHistory),
	}
	for c := 0; c < NumCorners; c++ {
		s.EyeHistory[c] = NewHistory(cfg.EyeHistory)
		s.InitialTemplates[c] = image.NewGray(image.Rect(0, 0, cfg.TemplateSize, cfg.TemplateSize))
		s.PreviousTemplates[c] = image.NewGray(image.Rect(0, 0, cfg.TemplateSize, cfg.TemplateSize))
	}
	return s
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for skipped ticks and mode changes.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock replaces time.Now as the source of the calibration timer.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker runs the per-frame gaze tracking pipeline. It is not safe for
// concurrent use; see Run for a host loop that serializes ticks and input.
type Tracker struct {
	cfg     Config
	state   *State
	display image.Point

	detector *Detector
	eyes     *EyeTracker
	patches  *PatchExtractor
	calib    *Calibrator
	est      Estimator

	frame    *image.Gray
	now      func() time.Time
	prevTime time.Time
	logger   *slog.Logger
	blend    *imop.Blend
}

// NewTracker creates a tracker fitting landmarks with fitter and mapping
// eye images with est onto a display of the given size.
func NewTracker(cfg Config, fitter ShapeFitter, est Estimator, display image.Point, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	if fitter == nil || est == nil {
		return nil, fmt.Errorf("tracker needs both a shape fitter and an estimator")
	}
	if display.X <= 0 || display.Y <= 0 {
		return nil, fmt.Errorf("invalid display size %v", display)
	}
	t := &Tracker{
		cfg:      cfg,
		state:    NewState(cfg),
		display:  display,
		detector: NewDetector(fitter, cfg),
		eyes:     NewEyeTracker(cfg),
		patches:  NewPatchExtractor(cfg),
		calib:    NewCalibrator(cfg),
		est:      est,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Tick runs one update. A nil frame means no new frame is available: the
// vision work is skipped but the calibration timer still runs.
// Failures of the individual stages are logged and skipped.
func (t *Tracker) Tick(frame *image.Gray) {
	s := t.state
	now := t.now()
	var dt time.Duration
	if !t.prevTime.IsZero() {
		dt = now.Sub(t.prevTime)
	}
	t.prevTime = now

	if frame != nil {
		frame = toGray(frame)
		t.frame = frame
		t.updatePositions(frame)

		if err := t.patches.Extract(s, frame); err != nil {
			t.logger.Debug("eye patch extraction skipped", "err", err)
		}
		if s.Mode == ModeTracking && s.Calibrated {
			t.updateGaze()
		}
	}

	if s.Mode == ModeCalibration {
		t.updateCalibration(dt)
	}
}

func (t *Tracker) updatePositions(frame *image.Gray) {
	s := t.state
	if s.Mode == ModeDetection {
		if err := t.detector.Detect(s, frame); err != nil {
			t.logger.Debug("eye detection skipped", "err", err)
		}
		return
	}

	if err := t.eyes.Track(s, frame); err != nil {
		s.TrackingFailures++
		t.logger.Debug("eye tracking skipped", "err", err, "failures", s.TrackingFailures)
		if s.Mode == ModeTracking && t.cfg.MaxTrackingFailures > 0 && s.TrackingFailures >= t.cfg.MaxTrackingFailures {
			t.logger.Info("eye tracking lost, back to detection", "failures", s.TrackingFailures)
			t.setMode(ModeDetection)
		}
		return
	}
	s.TrackingFailures = 0
}

func (t *Tracker) updateGaze() {
	s := t.state
	x, y, err := t.est.Estimate(s.Eyes)
	if err != nil {
		t.logger.Debug("gaze estimation skipped", "err", err)
		return
	}
	s.GazeHistory.Push(Pt(x, y))
	s.Gaze = s.GazeHistory.Mean()
}

func (t *Tracker) updateCalibration(dt time.Duration) {
	s := t.state
	phase, err := t.calib.Advance(s, dt, t.est)
	switch phase {
	case CalibrationCaptured:
		t.logger.Debug("calibration sample captured", "index", s.Calibration.Index, "targets", len(s.Calibration.Targets))
	case CalibrationComplete:
		if err != nil {
			t.logger.Warn("calibration failed", "err", err)
			s.Calibrated = false
		} else {
			t.logger.Info("calibration complete", "samples", len(s.Calibration.Archive))
			s.Calibrated = true
		}
		t.setMode(ModeTracking)
	}
}

// Advance handles the user's mode-advance input: detection goes to
// tracking, tracking starts a new calibration and calibration aborts back
// to detection.
func (t *Tracker) Advance() {
	switch t.state.Mode {
	case ModeDetection:
		t.setMode(ModeTracking)
	case ModeTracking:
		t.startCalibration()
		t.setMode(ModeCalibration)
	default:
		t.calib.Stop(t.state)
		t.setMode(ModeDetection)
	}
}

func (t *Tracker) startCalibration() {
	s := t.state
	t.calib.Start(s, t.display.X, t.display.Y, t.est)
	// The first target shrinks from the moment it is shown.
	t.prevTime = t.now()
	for _, h := range s.EyeHistory {
		h.Reset()
	}
	s.GazeHistory.Reset()
	s.Gaze = Point{}
	s.Calibrated = false
}

func (t *Tracker) setMode(m Mode) {
	if t.state.Mode == m {
		return
	}
	t.logger.Info("mode changed", "from", t.state.Mode, "to", m)
	t.state.Mode = m
	t.state.TrackingFailures = 0
}

// Reset unsets the eye corners and drops every history, the templates
// and the calibration, returning to detection mode.
func (t *Tracker) Reset() {
	t.calib.Stop(t.state)
	t.est.Reset()
	t.state = NewState(t.cfg)
}

// SetDisplaySize changes the display size used by the next calibration.
func (t *Tracker) SetDisplaySize(w, h int) {
	if w > 0 && h > 0 {
		t.display = image.Pt(w, h)
	}
}

// Mode returns the current session mode.
func (t *Tracker) Mode() Mode { return t.state.Mode }

// Corners returns the current eye corner positions.
func (t *Tracker) Corners() EyeCornerSet { return t.state.Corners }

// Calibrated reports whether the estimator was fitted in this session.
func (t *Tracker) Calibrated() bool { return t.state.Calibrated }

// GazePoint returns the smoothed gaze point in display coordinates. It
// is only meaningful when Calibrated reports true.
func (t *Tracker) GazePoint() Point { return t.state.Gaze }

// Calibration returns the calibration progress.
func (t *Tracker) Calibration() CalibrationState {
	cs := t.state.Calibration
	cs.Targets = append([]Point(nil), cs.Targets...)
	cs.Archive = append([]*image.Gray(nil), cs.Archive...)
	return cs
}

// EyeImage returns a copy of the combined eye image.
func (t *Tracker) EyeImage() *image.Gray { return cloneGray(t.state.Eyes) }
