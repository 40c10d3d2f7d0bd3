package gazetracker

import (
	"fmt"
	"image"
)

// PatchExtractor rectifies both eye regions into the combined eye image.
type PatchExtractor struct {
	cfg    Config
	filter *bilateral
	dst    [3]Point
	ratio  float64

	raw   *image.Gray
	left  *image.Gray
	right *image.Gray
}

// NewPatchExtractor creates a PatchExtractor for the configured eye image size.
func NewPatchExtractor(cfg Config) *PatchExtractor {
	w, h := cfg.EyeImageWidth/2, cfg.EyeImageHeight
	off := float64(cfg.EyeImageWidth / 30)
	hh := float64(cfg.EyeImageHeight / 2)
	return &PatchExtractor{
		cfg:    cfg,
		filter: newBilateral(cfg.BilateralSigmaColor, cfg.BilateralSigmaSpace),
		dst: [3]Point{
			Pt(off, 0),
			Pt(off, hh),
			Pt(float64(w)-off, hh),
		},
		ratio: hh / (float64(w) - 2*off),
		raw:   image.NewGray(image.Rect(0, 0, w, h)),
		left:  image.NewGray(image.Rect(0, 0, w, h)),
		right: image.NewGray(image.Rect(0, 0, w, h)),
	}
}

// Extract writes the rectified, smoothed and equalized left and right eye
// patches side by side into s.Eyes. The combined image is left unchanged
// when any corner is unset or the geometry is degenerate.
func (e *PatchExtractor) Extract(s *State, frame *image.Gray) error {
	if !s.Corners.Valid() {
		return fmt.Errorf("extract eye patches %v: %w", s.Corners, ErrCornersUnset)
	}
	if err := e.eye(e.left, frame, s.Corners[LeftOuter], s.Corners[LeftInner]); err != nil {
		return fmt.Errorf("left eye: %w", err)
	}
	if err := e.eye(e.right, frame, s.Corners[RightInner], s.Corners[RightOuter]); err != nil {
		return fmt.Errorf("right eye: %w", err)
	}
	pasteGray(s.Eyes, e.left, image.Pt(0, 0))
	pasteGray(s.Eyes, e.right, image.Pt(e.cfg.EyeImageWidth/2, 0))
	return nil
}

// eye rectifies the eye spanned by its image-left corner a and image-right
// corner b. Both corners are anchored on their mean height.
func (e *PatchExtractor) eye(out, frame *image.Gray, a, b Point) error {
	y := (a.Y + b.Y) / 2
	src := [3]Point{
		Pt(a.X, y-e.ratio*b.Sub(a).Norm()),
		Pt(a.X, y),
		Pt(b.X, y),
	}
	m, err := affineFromTriangles(src, e.dst)
	if err != nil {
		return err
	}
	warpAffine(e.raw, frame, m)
	e.filter.apply(out, e.raw)
	equalizeHist(out)
	return nil
}
