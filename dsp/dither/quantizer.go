package dither

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-micfront/dsp/core"
)

// Quantizer maps [-1, 1] to int16 full scale.
type Quantizer struct {
	kind      Type
	amplitude float64
	shape     bool
	rng       *rand.Rand

	lastErr float64
}

// New creates a Quantizer. The default is TPDF dither of one LSB without
// shaping.
func New(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		kind:      cfg.kind,
		amplitude: cfg.amplitude,
		shape:     cfg.shape,
		rng:       cfg.rng,
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return q, nil
}

// Type returns the dither noise type.
func (q *Quantizer) Type() Type { return q.kind }

// ProcessSample quantizes one sample.
func (q *Quantizer) ProcessSample(x float64) int16 {
	scaled := x * core.MaxInt16
	if q.shape {
		scaled -= q.lastErr
	}

	var out int16
	switch q.kind {
	case Rectangular:
		out = core.SaturateInt16(math.Round(scaled + q.amplitude*(q.rng.Float64()*2-1)))
	case Triangular:
		out = core.SaturateInt16(math.Round(scaled + q.amplitude*(q.rng.Float64()-q.rng.Float64())))
	default:
		out = core.SaturateInt16(scaled)
	}

	if q.shape {
		// Clipped samples would wind the feedback up without bound.
		q.lastErr = max(-1, min(1, float64(out)-scaled))
	}
	return out
}

// ProcessTo quantizes src into dst, which is grown as needed.
func (q *Quantizer) ProcessTo(dst []int16, src []float64) []int16 {
	dst = core.EnsureLenInt16(dst, len(src))
	for i, v := range src {
		dst[i] = q.ProcessSample(v)
	}
	return dst
}

// Reset clears the error feedback.
func (q *Quantizer) Reset() {
	q.lastErr = 0
}
