package gazetracker

import (
	"fmt"
	"image"
)

// EyeTracker follows the eye corners from frame to frame by matching the
// initial and the previous template of each corner inside a search window.
type EyeTracker struct {
	cfg Config
	res []float64
}

// NewEyeTracker creates an EyeTracker.
func NewEyeTracker(cfg Config) *EyeTracker {
	rw := cfg.SearchWindowSize - cfg.TemplateSize + 1
	return &EyeTracker{cfg: cfg, res: make([]float64, rw*rw)}
}

// inBounds reports whether a full search window fits around p.
func (t *EyeTracker) inBounds(p Point, bounds image.Rectangle) bool {
	half := t.cfg.SearchWindowSize / 2
	rest := t.cfg.SearchWindowSize - half
	return p.X >= float64(bounds.Min.X+half) && p.X <= float64(bounds.Max.X-rest) &&
		p.Y >= float64(bounds.Min.Y+half) && p.Y <= float64(bounds.Max.Y-rest)
}

// Track relocates every corner to the peak of the weighted sum of both
// correlation maps and refreshes the previous template there. The
// initial template is never modified. If any corner is closer than half a
// search window to the frame edge nothing is changed and ErrOutOfBounds is
// returned.
func (t *EyeTracker) Track(s *State, frame *image.Gray) error {
	bounds := frame.Bounds()
	for c, p := range s.Corners {
		if !t.inBounds(p, bounds) {
			return fmt.Errorf("track %v at %v: %w", EyeCorner(c), p, ErrOutOfBounds)
		}
	}

	sw, half := t.cfg.SearchWindowSize, t.cfg.SearchWindowSize/2
	for c, p := range s.Corners {
		origin := image.Pt(int(p.X)-half, int(p.Y)-half)
		window := frame.SubImage(image.Rectangle{Min: origin, Max: origin.Add(image.Pt(sw, sw))}).(*image.Gray)

		initV, rw, _ := matchTemplate(window, s.InitialTemplates[c])
		prevV, _, _ := matchTemplate(window, s.PreviousTemplates[c])
		for i := range t.res {
			t.res[i] = t.cfg.InitialWeight*initV[i] + t.cfg.PreviousWeight*prevV[i]
		}

		loc := argMax(t.res, rw)
		ts2 := t.cfg.TemplateSize / 2
		np := Pt(float64(origin.X+loc.X+ts2), float64(origin.Y+loc.Y+ts2))
		s.Corners[c] = np
		cropClamped(s.PreviousTemplates[c], frame, np.Image())
	}
	return nil
}

// argMax returns the position of the largest value in a row-major map.
// Ties resolve to the first occurrence.
func argMax(m []float64, w int) image.Point {
	best := 0
	for i, v := range m {
		if v > m[best] {
			best = i
		}
	}
	return image.Pt(best%w, best/w)
}
