package math

import "golang.org/x/exp/constraints"

// Clamp returns f clamped to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * (3.14159265358979323846 / 180.0)
}
