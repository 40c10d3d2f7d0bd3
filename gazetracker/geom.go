package gazetracker

import (
	"fmt"
	"image"
	"math"
)

// Point is a sub-pixel image or display coordinate.
// The zero value marks an unset eye corner.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the vector p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul returns the vector p*k.
func (p Point) Mul(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Norm returns the euclidean length of p.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsSet reports whether both coordinates are non-zero.
func (p Point) IsSet() bool {
	return p.X != 0 && p.Y != 0
}

// Image rounds p to the nearest integer pixel.
func (p Point) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

// EyeCorner indexes one of the four tracked eye corners.
type EyeCorner int

// Eye corners in image order, from the leftmost to the rightmost.
const (
	LeftOuter EyeCorner = iota
	LeftInner
	RightInner
	RightOuter

	NumCorners = 4
)

func (c EyeCorner) String() string {
	switch c {
	case LeftOuter:
		return "left-outer"
	case LeftInner:
		return "left-inner"
	case RightInner:
		return "right-inner"
	case RightOuter:
		return "right-outer"
	}
	return fmt.Sprintf("EyeCorner(%d)", int(c))
}

// EyeCornerSet holds the current position of every eye corner.
type EyeCornerSet [NumCorners]Point

// Valid reports whether all four corners are set.
func (s EyeCornerSet) Valid() bool {
	for _, p := range s {
		if !p.IsSet() {
			return false
		}
	}
	return true
}
