package gazetracker

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ofZach/EyeWriterCam/utils"
)

// ShapeFitter locates facial landmarks on a grayscale image.
// Fit returns ErrNoFace (possibly wrapped) when no face could be fitted.
type ShapeFitter interface {
	Fit(frame *image.Gray) ([]image.Point, error)
}

// Detector finds the eye corners from scratch with a ShapeFitter.
type Detector struct {
	fitter ShapeFitter
	cfg    Config
}

// NewDetector creates a Detector driving the given fitter.
func NewDetector(fitter ShapeFitter, cfg Config) *Detector {
	return &Detector{fitter: fitter, cfg: cfg}
}

// Detect fits the shape model on a downscaled copy of the frame and feeds
// the designated landmarks into the eye corner histories. The smoothed
// corners and both templates of every corner are refreshed from the
// result. On failure the state is left untouched.
func (d *Detector) Detect(s *State, frame *image.Gray) error {
	scale := d.cfg.DetectionScale
	small := frame
	if scale != 1 {
		w := int(math.Round(float64(frame.Rect.Dx()) * scale))
		h := int(math.Round(float64(frame.Rect.Dy()) * scale))
		small = toGray(imaging.Resize(frame, w, h, imaging.Linear))
	}

	landmarks, err := d.fitter.Fit(small)
	if err != nil {
		return fmt.Errorf("detect eyes: %w", err)
	}

	var raw [NumCorners]Point
	for c, idx := range d.cfg.LandmarkIndices {
		if idx >= len(landmarks) {
			return fmt.Errorf("detect eyes: landmark %d of %d missing: %w", idx, len(landmarks), ErrNoFace)
		}
		lm := landmarks[idx]
		raw[c] = Pt(float64(lm.X)/scale, float64(lm.Y)/scale)
	}

	bounds := frame.Bounds()
	for c := range raw {
		h := s.EyeHistory[c]
		h.Push(raw[c])
		mean := h.Mean()
		mean.X = utils.Clamp(mean.X, float64(bounds.Min.X), float64(bounds.Max.X-1))
		mean.Y = utils.Clamp(mean.Y, float64(bounds.Min.Y), float64(bounds.Max.Y-1))
		s.Corners[c] = mean

		cropClamped(s.InitialTemplates[c], frame, mean.Image())
		copy(s.PreviousTemplates[c].Pix, s.InitialTemplates[c].Pix)
	}
	return nil
}
