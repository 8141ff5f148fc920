package common

import (
	"cmp"
	"math"
)

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// UnormToByte converts a normalized [0, 1] channel value into its 8-bit unorm encoding,
// rounding to nearest as GPUs do when writing RGBA8Unorm targets.
func UnormToByte(v float64) uint8 {
	return uint8(math.Round(Clamp(v, 0, 1) * 255))
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
