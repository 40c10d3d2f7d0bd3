package gazetracker

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ofZach/EyeWriterCam/imop"
	"github.com/ofZach/EyeWriterCam/utils"
)

var (
	markerColor = color.NRGBA{R: 255, A: 255}
	gazeColor   = color.NRGBA{G: 255, A: 255}
	targetColor = color.NRGBA{R: 255, G: 255, B: 255, A: 50}
	crossColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	markerRadius = 5
	crossArm     = 10
)

// WithOverlayBlend sets the blend mode applied when the diagnostic
// markers are laid over the frame.
func WithOverlayBlend(b *imop.Blend) Option {
	return func(t *Tracker) {
		t.blend = b
	}
}

// Diagnostic composes the last frame with the combined eye image in the
// top-left corner, the initial templates below it, the previous templates
// below those and a red circle on every eye corner. Once calibrated the
// gaze point is drawn as a green cross, scaled from display to frame
// coordinates. It returns nil before the first frame.
func (t *Tracker) Diagnostic() *image.NRGBA {
	if t.frame == nil {
		return nil
	}
	s := t.state
	ts := t.cfg.TemplateSize
	eh := s.Eyes.Rect.Dy()

	base := imaging.Clone(t.frame)
	base = imaging.Paste(base, s.Eyes, image.Pt(0, 0))
	for c := 0; c < NumCorners; c++ {
		base = imaging.Paste(base, s.InitialTemplates[c], image.Pt(c*ts, eh))
		base = imaging.Paste(base, s.PreviousTemplates[c], image.Pt(c*ts, eh+ts))
	}

	overlay := image.NewNRGBA(base.Bounds())
	for _, p := range s.Corners {
		if p.IsSet() {
			strokeCircle(overlay, p.Image(), markerRadius, markerColor)
		}
	}
	if s.Calibrated {
		fw, fh := float64(base.Bounds().Dx()), float64(base.Bounds().Dy())
		g := Pt(s.Gaze.X*fw/float64(t.display.X), s.Gaze.Y*fh/float64(t.display.Y))
		cross(overlay, g.Image(), crossArm/2, gazeColor)
	}

	bmp := imop.NewBitmap(base.Bounds())
	imop.InitOp().Draw(bmp, overlay, base, t.blend)
	return bmp.Img
}

// CalibrationView renders the current calibration target on a black w×h
// canvas: a translucent disc of the current radius and a crosshair on the
// target. Outside of a running calibration the canvas stays black.
func (t *Tracker) CalibrationView(w, h int) *image.NRGBA {
	base := imaging.New(w, h, color.Black)
	cs := t.state.Calibration
	if cs.Phase != CalibrationActive && cs.Phase != CalibrationCaptured {
		return base
	}
	target, ok := cs.Target()
	if !ok {
		return base
	}
	sx := float64(w) / float64(cs.Display.X)
	sy := float64(h) / float64(cs.Display.Y)
	center := Pt(target.X*sx, target.Y*sy).Image()

	overlay := image.NewNRGBA(base.Bounds())
	fillDisc(overlay, center, cs.Radius*math.Min(sx, sy), targetColor)
	cross(overlay, center, crossArm, crossColor)

	bmp := imop.NewBitmap(base.Bounds())
	imop.InitOp().Draw(bmp, overlay, base, nil)
	return bmp.Img
}

// Screen returns what the user is shown: the calibration target on a w×h
// canvas while calibrating and the diagnostic view otherwise. It returns
// nil when there is nothing to show yet.
func (t *Tracker) Screen(w, h int) *image.NRGBA {
	if t.state.Mode == ModeCalibration {
		return t.CalibrationView(w, h)
	}
	return t.Diagnostic()
}

func strokeCircle(img *image.NRGBA, c image.Point, r int, col color.NRGBA) {
	for dy := -r - 1; dy <= r+1; dy++ {
		for dx := -r - 1; dx <= r+1; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			if utils.Abs(d-float64(r)) < 0.5 {
				setIn(img, c.X+dx, c.Y+dy, col)
			}
		}
	}
}

func fillDisc(img *image.NRGBA, c image.Point, r float64, col color.NRGBA) {
	ir := int(math.Ceil(r))
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) <= r*r {
				setIn(img, c.X+dx, c.Y+dy, col)
			}
		}
	}
}

func cross(img *image.NRGBA, c image.Point, arm int, col color.NRGBA) {
	for d := -arm; d <= arm; d++ {
		setIn(img, c.X+d, c.Y, col)
		setIn(img, c.X, c.Y+d, col)
	}
}

func setIn(img *image.NRGBA, x, y int, col color.NRGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetNRGBA(x, y, col)
	}
}
