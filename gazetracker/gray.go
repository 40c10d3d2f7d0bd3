package gazetracker

import (
	"image"
	"image/draw"

	"github.com/ofZach/EyeWriterCam/utils"
)

// toGray converts any image into an 8-bit grayscale image anchored at the origin.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	if g, ok := src.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// clampedWindow returns the size×size rectangle centered on c,
// shifted so that it lies fully inside bounds.
func clampedWindow(c image.Point, size int, bounds image.Rectangle) image.Rectangle {
	x := c.X - size/2
	y := c.Y - size/2
	x = utils.Clamp(x, bounds.Min.X, bounds.Max.X-size)
	y = utils.Clamp(y, bounds.Min.Y, bounds.Max.Y-size)
	return image.Rect(x, y, x+size, y+size)
}

// cropClamped copies into dst the window of dst's size centered on c,
// clamped into the frame. It returns the window that was copied.
func cropClamped(dst *image.Gray, frame *image.Gray, c image.Point) image.Rectangle {
	r := clampedWindow(c, dst.Rect.Dx(), frame.Bounds())
	draw.Draw(dst, dst.Rect, frame, r.Min, draw.Src)
	return r
}

// pasteGray writes src into dst with its top-left corner at at.
func pasteGray(dst *image.Gray, src *image.Gray, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Rect.Size())}
	draw.Draw(dst, r, src, src.Rect.Min, draw.Src)
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
