package gazetracker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestHistory_Mean(t *testing.T) {
	const capacity = 10

	tests := []struct {
		name   string
		pushes int
		expLen int
		first  float64
	}{
		{"one", 1, 1, 1},
		{"full", capacity, capacity, 1},
		{"overflow", capacity + 5, capacity, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(capacity)
			for i := 1; i <= tt.pushes; i++ {
				h.Push(Pt(float64(i), float64(2*i)))
				assert.LessOrEqual(t, h.Len(), h.Cap())
			}
			assert.Equal(t, tt.expLen, h.Len())

			var sum Point
			samples := h.Samples()
			for _, p := range samples {
				sum = sum.Add(p)
			}
			want := sum.Mul(1 / float64(len(samples)))
			got := h.Mean()
			assert.InDelta(t, want.X, got.X, 1e-9)
			assert.InDelta(t, want.Y, got.Y, 1e-9)
			assert.Equal(t, tt.first, samples[0].X)
		})
	}
}

func TestHistory_Order(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(Pt(float64(i), 0))
	}
	want := []Point{{3, 0}, {4, 0}, {5, 0}}
	if diff := cmp.Diff(want, h.Samples()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 1, h.Cap())

	h.Push(Pt(3, 4))
	h.Push(Pt(5, 6))
	assert.Equal(t, Pt(5, 6), h.Mean())

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, Point{}, h.Mean())
	assert.Empty(t, h.Samples())
}
