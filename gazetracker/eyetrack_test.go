package gazetracker

import (
	"errors"
	"image"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectedState returns a state whose corners and templates were captured
// from frame at the given positions.
func detectedState(t *testing.T, cfg Config, frame *image.Gray, corners [NumCorners]image.Point) *State {
	t.Helper()
	s := NewState(cfg)
	require.NoError(t, NewDetector(fitterAt(corners), cfg).Detect(s, frame))
	return s
}

func TestEyeTracker_FollowsMotion(t *testing.T) {
	cfg := DefaultConfig()
	world := texture(400, 300, 11)
	frame := image.NewGray(image.Rect(0, 0, 320, 240))
	draw.Draw(frame, frame.Rect, world, image.Pt(20, 20), draw.Src)

	s := detectedState(t, cfg, frame, defaultCorners)
	initial := cloneGray(s.InitialTemplates[LeftOuter])

	// The camera moves so that the scene shifts by (+3, -2).
	shifted := image.NewGray(image.Rect(0, 0, 320, 240))
	draw.Draw(shifted, shifted.Rect, world, image.Pt(17, 22), draw.Src)

	tr := NewEyeTracker(cfg)
	require.NoError(t, tr.Track(s, shifted))

	for c, p := range defaultCorners {
		assert.Equal(t, Pt(float64(p.X+3), float64(p.Y-2)), s.Corners[c], EyeCorner(c).String())
	}
	assert.Equal(t, initial.Pix, s.InitialTemplates[LeftOuter].Pix)

	expected := image.NewGray(initial.Rect)
	cropClamped(expected, shifted, image.Pt(103, 118))
	assert.Equal(t, expected.Pix, s.PreviousTemplates[LeftOuter].Pix)

	// Tracking never touches the histories.
	assert.Equal(t, 1, s.EyeHistory[LeftOuter].Len())
}

func TestEyeTracker_Bounds(t *testing.T) {
	const w, h = 100, 100
	cfg := DefaultConfig()
	half := float64(cfg.SearchWindowSize / 2)

	tests := []struct {
		name string
		p    Point
		ok   bool
	}{
		{"at left threshold", Pt(half, 50), true},
		{"at right threshold", Pt(w-half, 50), true},
		{"at top threshold", Pt(50, half), true},
		{"at bottom threshold", Pt(50, h-half), true},
		{"inside left threshold", Pt(half-0.5, 50), false},
		{"inside right threshold", Pt(w-half+0.5, 50), false},
		{"inside top threshold", Pt(50, half-0.5), false},
		{"inside bottom threshold", Pt(50, h-half+0.5), false},
		{"unset", Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := texture(w, h, 4)
			s := NewState(cfg)
			s.Corners = EyeCornerSet{Pt(40, 50), Pt(50, 50), Pt(60, 50), Pt(50, 60)}
			s.Corners[RightInner] = tt.p
			for c := range s.Corners {
				cropClamped(s.InitialTemplates[c], frame, s.Corners[c].Image())
				cropClamped(s.PreviousTemplates[c], frame, s.Corners[c].Image())
			}
			before := s.Corners
			prev := cloneGray(s.PreviousTemplates[LeftOuter])

			err := NewEyeTracker(cfg).Track(s, texture(w, h, 8))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrOutOfBounds))
			assert.Equal(t, before, s.Corners)
			assert.Equal(t, prev.Pix, s.PreviousTemplates[LeftOuter].Pix)
		})
	}
}

func TestEyeTracker_Weights(t *testing.T) {
	cfg := DefaultConfig()
	world := texture(400, 300, 21)
	frame := image.NewGray(image.Rect(0, 0, 320, 240))
	draw.Draw(frame, frame.Rect, world, image.Pt(20, 20), draw.Src)
	s := detectedState(t, cfg, frame, defaultCorners)

	// The previous template points somewhere else entirely. With a zero
	// weight it is ignored and the initial template alone wins.
	for c := range s.PreviousTemplates {
		copy(s.PreviousTemplates[c].Pix, texture(cfg.TemplateSize, cfg.TemplateSize, int64(c)).Pix)
	}
	cfg.PreviousWeight = 0

	require.NoError(t, NewEyeTracker(cfg).Track(s, frame))
	for c, p := range defaultCorners {
		assert.Equal(t, Pt(float64(p.X), float64(p.Y)), s.Corners[c])
	}
}
