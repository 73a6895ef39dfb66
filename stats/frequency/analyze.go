package frequency

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-micfront/dsp/window"
)

// MaxFFTSize bounds the transform length chosen by Analyze.
const MaxFFTSize = 1 << 16

var errNoSamples = errors.New("frequency: no samples")

// Spectrum is a one-sided amplitude spectrum of int16 PCM, scaled so that a
// full-scale sine on a bin centre reads 1.0.
type Spectrum struct {
	Magnitude  []float64 // bins 0..FFTSize/2
	SampleRate float64
	FFTSize    int
	Window     window.Type
}

// AnalyzeOption configures Analyze.
type AnalyzeOption func(*analyzeConfig)

type analyzeConfig struct {
	window  window.Type
	fftSize int
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) AnalyzeOption {
	return func(c *analyzeConfig) { c.window = t }
}

// WithFFTSize fixes the transform length. It must be a power of two; input
// longer than it is truncated, shorter input is zero-padded.
func WithFFTSize(n int) AnalyzeOption {
	return func(c *analyzeConfig) { c.fftSize = n }
}

type scratch struct {
	in, out []complex128
	re, im  []float64
}

var scratchPool = sync.Pool{New: func() any { return new(scratch) }}

// Analyze computes the windowed spectrum of samples. Without WithFFTSize the
// transform covers the next power of two at or above len(samples), capped
// at MaxFFTSize.
func Analyze(samples []int16, sampleRate float64, opts ...AnalyzeOption) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("frequency: sample rate must be positive and finite: %v", sampleRate)
	}

	cfg := analyzeConfig{window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := cfg.fftSize
	if size == 0 {
		size = min(nextPowerOf2(len(samples)), MaxFFTSize)
	}
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("frequency: fft size must be a power of two >= 2: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("frequency: failed to create FFT plan: %w", err)
	}

	frame := min(len(samples), size)
	coeffs := window.Generate(cfg.window, frame, window.WithPeriodic())
	gain, err := window.CoherentGain(coeffs)
	if err != nil || gain == 0 {
		return nil, fmt.Errorf("frequency: unusable window %v", cfg.window)
	}

	s := scratchPool.Get().(*scratch)
	defer scratchPool.Put(s)

	s.in = ensureComplex(s.in, size)
	s.out = ensureComplex(s.out, size)
	for i := range s.in {
		s.in[i] = 0
	}
	for i := range frame {
		s.in[i] = complex(float64(samples[i])/32768*coeffs[i], 0)
	}

	if err := plan.Forward(s.out, s.in); err != nil {
		return nil, fmt.Errorf("frequency: forward FFT: %w", err)
	}

	bins := size/2 + 1
	s.re = ensureFloat(s.re, bins)
	s.im = ensureFloat(s.im, bins)
	for i := range bins {
		s.re[i] = real(s.out[i])
		s.im[i] = imag(s.out[i])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, s.re, s.im)

	// One-sided amplitude: DC and Nyquist are not doubled.
	scale := 2 / (float64(frame) * gain)
	vecmath.ScaleBlockInPlace(mag, scale)
	mag[0] /= 2
	mag[bins-1] /= 2

	return &Spectrum{
		Magnitude:  mag,
		SampleRate: sampleRate,
		FFTSize:    size,
		Window:     cfg.window,
	}, nil
}

// Resolution returns the bin spacing in Hz.
func (s *Spectrum) Resolution() float64 {
	return s.SampleRate / float64(s.FFTSize)
}

// Nyquist returns half the sample rate.
func (s *Spectrum) Nyquist() float64 {
	return s.SampleRate / 2
}

// BinFreq returns the centre frequency of bin i.
func (s *Spectrum) BinFreq(i int) float64 {
	return float64(i) * s.Resolution()
}

// Stats summarises the spectrum.
func (s *Spectrum) Stats() Stats {
	return Calculate(s.Magnitude, s.SampleRate)
}

// BandEnergy returns the sum of squared magnitudes of bins whose centre lies
// in [loHz, hiHz].
func (s *Spectrum) BandEnergy(loHz, hiHz float64) float64 {
	if hiHz < loHz {
		loHz, hiHz = hiHz, loHz
	}
	res := s.Resolution()
	lo := max(int(math.Ceil(loHz/res)), 0)
	hi := min(int(math.Floor(hiHz/res)), len(s.Magnitude)-1)

	e := 0.0
	for i := lo; i <= hi; i++ {
		e += s.Magnitude[i] * s.Magnitude[i]
	}
	return e
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func ensureComplex(buf []complex128, n int) []complex128 {
	if cap(buf) < n {
		return make([]complex128, n)
	}
	return buf[:n]
}

func ensureFloat(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
