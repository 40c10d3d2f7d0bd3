package utils

import "golang.org/x/exp/constraints"

// Min returns the smaller value between two numbers.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the bigger value between two numbers.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolut value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts v to the closed interval [lo, hi].
// If hi is smaller than lo, lo wins.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return Max(lo, Min(v, hi))
}

// ScaleToFit returns the size of a w×h rectangle shrunk, with its aspect
// ratio kept, so that it fits into maxW×maxH. Smaller rectangles are
// returned unchanged.
func ScaleToFit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return Max(1, int(float64(w)*ratio)), Max(1, int(float64(h)*ratio))
}
