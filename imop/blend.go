package imop

import (
	"fmt"
	"math"
)

// Mode is a separable blend mode applied after composition.
type Mode int

// The supported blend modes.
const (
	None Mode = iota
	Darken
	Lighten
	Multiply
	Screen
	Overlay
)

var modeNames = map[string]Mode{
	"none":     None,
	"darken":   Darken,
	"lighten":  Lighten,
	"multiply": Multiply,
	"screen":   Screen,
	"overlay":  Overlay,
}

func (m Mode) String() string {
	for k, v := range modeNames {
		if v == m {
			return k
		}
	}
	return "unknown"
}

// Blend holds the currently active blend mode.
type Blend struct {
	Mode Mode
}

// NewBlend initializes a new Blend with no blending.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates the blend mode named name.
func (b *Blend) Set(name string) error {
	m, ok := modeNames[name]
	if !ok {
		return fmt.Errorf("unsupported blend mode %q", name)
	}
	b.Mode = m
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() Mode {
	return b.Mode
}

// mix returns the source color s blended with the backdrop color d,
// weighted by the backdrop coverage. The source alpha is kept.
func (b *Blend) mix(d, s pixel) pixel {
	f := func(cb, cs float64) float64 {
		return (1-d.a)*cs + d.a*b.channel(cb, cs)
	}
	return pixel{
		r: f(d.r, s.r),
		g: f(d.g, s.g),
		b: f(d.b, s.b),
		a: s.a,
	}
}

func (b *Blend) channel(cb, cs float64) float64 {
	switch b.Mode {
	case Darken:
		return math.Min(cb, cs)
	case Lighten:
		return math.Max(cb, cs)
	case Multiply:
		return cb * cs
	case Screen:
		return 1 - (1-cb)*(1-cs)
	case Overlay:
		if cb <= 0.5 {
			return 2 * cb * cs
		}
		return 1 - 2*(1-cb)*(1-cs)
	}
	return cb
}
