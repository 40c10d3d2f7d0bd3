package gazetracker

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNCC_FindsTemplate(t *testing.T) {
	search := texture(60, 60, 7)
	tmpl := image.NewGray(image.Rect(0, 0, 10, 10))
	cropClamped(tmpl, search, image.Pt(25, 30))

	res, rw, rh := matchTemplate(search, tmpl)
	require.Equal(t, 51, rw)
	require.Equal(t, 51, rh)

	loc := argMax(res, rw)
	assert.Equal(t, image.Pt(20, 25), loc)
	assert.InDelta(t, 1.0, res[loc.Y*rw+loc.X], 1e-5)
	for _, v := range res {
		assert.LessOrEqual(t, v, 1.0+1e-9)
		assert.GreaterOrEqual(t, v, -1.0-1e-9)
	}
}

func TestNCC_SubImageWindow(t *testing.T) {
	frame := texture(80, 80, 3)
	tmpl := image.NewGray(image.Rect(0, 0, 8, 8))
	cropClamped(tmpl, frame, image.Pt(44, 41))

	window := frame.SubImage(image.Rect(30, 30, 60, 60)).(*image.Gray)
	res, rw, _ := matchTemplate(window, tmpl)
	assert.Equal(t, image.Pt(10, 7), argMax(res, rw))
}

func TestNCC_FlatInput(t *testing.T) {
	search := image.NewGray(image.Rect(0, 0, 20, 20))
	fill(search, 90)
	tmpl := texture(5, 5, 1)

	res, _, _ := matchTemplate(search, tmpl)
	for _, v := range res {
		assert.InDelta(t, 0, v, 1e-6)
	}

	res, rw, rh := matchTemplate(tmpl, search)
	assert.Nil(t, res)
	assert.Zero(t, rw)
	assert.Zero(t, rh)
}
