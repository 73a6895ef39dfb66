package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

type config struct {
	kind      Type
	amplitude float64
	shape     bool
	rng       *rand.Rand
}

func defaultConfig() config {
	return config{kind: Triangular, amplitude: 1}
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithType sets the dither noise PDF (default [Triangular]).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", t)
		}
		cfg.kind = t
		return nil
	}
}

// WithAmplitude scales the dither noise in LSBs (default 1).
func WithAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}
		cfg.amplitude = amp
		return nil
	}
}

// WithShaping feeds each quantization error back into the next sample,
// pushing the noise floor toward high frequencies.
func WithShaping(on bool) Option {
	return func(cfg *config) error {
		cfg.shape = on
		return nil
	}
}

// WithSeed makes the noise sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.rng = rand.New(rand.NewPCG(seed, 0))
		return nil
	}
}
