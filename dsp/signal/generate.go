package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-micfront/dsp/core"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// SetSeed changes the noise seed.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Samples returns the number of samples covering duration seconds.
func (g *Generator) Samples(seconds float64) int {
	return int(seconds * g.cfg.SampleRate)
}

func (g *Generator) check(kind string, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%s samples must be > 0: %d", kind, samples)
	}
	if g.cfg.SampleRate <= 0 {
		return fmt.Errorf("%s sample rate must be > 0: %f", kind, g.cfg.SampleRate)
	}
	return nil
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if err := g.check("sine", samples); err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if err := g.check("noise", samples); err != nil {
		return nil, err
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// GaussianNoise generates deterministic normally distributed noise with the
// given standard deviation.
func (g *Generator) GaussianNoise(stddev float64, samples int) ([]float64, error) {
	if err := g.check("noise", samples); err != nil {
		return nil, err
	}
	if stddev < 0 {
		return nil, fmt.Errorf("noise stddev must be >= 0: %f", stddev)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = rng.NormFloat64() * stddev
	}
	return out, nil
}

// Transient adds a decaying burst amplitude*exp(-n/tau) starting at startSec
// and lasting lengthSec into dst. Bursts running past the end are cut.
// Samples inside the burst are overwritten, not summed.
func (g *Generator) Transient(dst []float64, startSec, lengthSec, tauSec, amplitude float64) error {
	if tauSec <= 0 || lengthSec <= 0 {
		return fmt.Errorf("transient length and decay must be > 0: %f, %f", lengthSec, tauSec)
	}
	start := g.Samples(startSec)
	if start < 0 || start >= len(dst) {
		return nil
	}
	end := min(start+g.Samples(lengthSec), len(dst))
	tau := tauSec * g.cfg.SampleRate
	for i := start; i < end; i++ {
		dst[i] = amplitude * math.Exp(-float64(i-start)/tau)
	}
	return nil
}

// TestTone parameters. The partials form a 440 Hz tone with two harmonics
// plus a low hum; bursts imitate taps on the microphone.
var (
	testTonePartials = []struct{ freq, amp float64 }{
		{440, 0.3},
		{880, 0.2},
		{1320, 0.15},
		{200, 0.1},
	}
	testToneBursts = []float64{2.0, 4.5, 7.0, 9.0}
)

const (
	testToneNoise    = 0.05
	testToneBurstAmp = 0.5
	testToneBurstLen = 0.1
	testToneBurstTau = 0.05
	TestTonePeak     = 0.8
)

// TestTone returns the composite microphone test signal of the given
// duration, normalized to TestTonePeak of full scale.
func (g *Generator) TestTone(seconds float64) ([]float64, error) {
	n := g.Samples(seconds)
	if err := g.check("test tone", n); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for _, p := range testTonePartials {
		s, err := g.Sine(p.freq, p.amp, n)
		if err != nil {
			return nil, err
		}
		for i, v := range s {
			out[i] += v
		}
	}

	noise, err := g.GaussianNoise(testToneNoise, n)
	if err != nil {
		return nil, err
	}

	bursts := make([]float64, n)
	for _, at := range testToneBursts {
		if err := g.Transient(bursts, at, testToneBurstLen, testToneBurstTau, testToneBurstAmp); err != nil {
			return nil, err
		}
	}

	for i := range out {
		out[i] += noise[i] + bursts[i]
	}

	return Normalize(out, TestTonePeak)
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	out := make([]float64, len(data))
	maxAbs := vecmath.MaxAbs(data)
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)
	return out, nil
}

// RemoveDC subtracts the mean and returns a new slice.
func RemoveDC(data []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("remove dc input must not be empty")
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out, nil
}

// Quantize maps [-1, 1] to int16 full scale (32767), truncating toward zero
// and saturating out-of-range values.
func Quantize(data []float64) []int16 {
	out := make([]int16, len(data))
	for i, v := range data {
		out[i] = core.SaturateInt16(v * core.MaxInt16)
	}
	return out
}
