package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(-1.5, Min(-1.5, 0.5))
	assert.Equal(3, Abs(-3))
	assert.Equal(0.25, Abs(0.25))
}

func TestMath_Clamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi int
		expect    int
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -4, 0, 10, 0},
		{"above", 14, 0, 10, 10},
		{"on lower edge", 0, 0, 10, 0},
		{"on upper edge", 10, 0, 10, 10},
		{"inverted interval", 5, 8, 2, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Clamp(tc.v, tc.lo, tc.hi))
		})
	}
}

func TestMath_ScaleToFit(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		expW, expH int
	}{
		{"fits", 1280, 800, 1280, 800},
		{"both larger", 2732, 1536, 1366, 768},
		{"wider", 2000, 500, 1366, 341},
		{"taller", 640, 1536, 320, 768},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := ScaleToFit(tc.w, tc.h, 1366, 768)
			assert.Equal(t, tc.expW, w)
			assert.Equal(t, tc.expH, h)
		})
	}
}
