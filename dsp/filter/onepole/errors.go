package onepole

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every configuration error returned from
// this package.
var ErrInvalidConfig = errors.New("onepole: invalid configuration")

func validateRate(sampleRate float64) error {
	if !isFinite(sampleRate) || sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0 and finite: %v", ErrInvalidConfig, sampleRate)
	}
	return nil
}

func validateCutoff(cutoffHz float64) error {
	if !isFinite(cutoffHz) || cutoffHz <= 0 {
		return fmt.Errorf("%w: cutoff must be > 0 and finite: %v", ErrInvalidConfig, cutoffHz)
	}
	return nil
}

func validateAlpha(alpha float64) error {
	if !isFinite(alpha) || alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w: alpha must be in (0, 1]: %v", ErrInvalidConfig, alpha)
	}
	return nil
}

func validateBounds(min, max int16) error {
	if min >= max {
		return fmt.Errorf("%w: clamp bounds must satisfy min < max: [%d, %d]", ErrInvalidConfig, min, max)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
