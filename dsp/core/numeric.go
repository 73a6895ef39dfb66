package core

import "math"

const defaultEpsilon = 1e-12

// Full-scale bounds of a signed 16-bit sample.
const (
	MinInt16 = math.MinInt16
	MaxInt16 = math.MaxInt16
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt16 limits value to [min, max] and truncates it toward zero.
// NaN maps to 0.
func ClampInt16(value float64, min, max int16) int16 {
	if math.IsNaN(value) {
		return 0
	}
	return int16(Clamp(value, float64(min), float64(max)))
}

// SaturateInt16 converts value to int16 with truncation toward zero,
// saturating at the int16 limits. NaN maps to 0.
func SaturateInt16(value float64) int16 {
	return ClampInt16(value, MinInt16, MaxInt16)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// DBFS expresses an int16-scale amplitude relative to full scale (32768).
// Returns -Inf for zero.
func DBFS(amplitude float64) float64 {
	return LinearToDB(math.Abs(amplitude) / -MinInt16)
}
