//go:build fastmath

package time

import "github.com/meko-christian/algo-approx"

const ln10 = 2.302585092994045684017991454684

// mathLog10 uses the identity log10(x) = ln(x) / ln(10).
func mathLog10(x float64) float64 {
	return approx.FastLog(x) / ln10
}

func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
