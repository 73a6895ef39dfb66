package onepole

import (
	"math"

	"github.com/cwbudde/algo-micfront/dsp/core"
)

// Reference front-end settings.
const (
	DefaultSampleRate = 48000.0
	DefaultCutoffHz   = 5000.0
	DefaultBlockSize  = 128
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	min int16
	max int16
}

func defaultConfig() config {
	return config{
		min: core.MinInt16,
		max: core.MaxInt16,
	}
}

// WithClamp limits every output sample to [min, max].
// By default the full int16 range is used.
func WithClamp(min, max int16) Option {
	return func(cfg *config) error {
		if err := validateBounds(min, max); err != nil {
			return err
		}

		cfg.min = min
		cfg.max = max

		return nil
	}
}

// State is the recursive filter memory.
type State struct {
	PrevOutput int16
}

// Lowpass is a single-pole exponential moving average over int16 samples.
type Lowpass struct {
	sampleRate float64
	cutoffHz   float64
	alpha      float64
	min        int16
	max        int16

	state State
}

// Alpha returns the smoothing coefficient 1/(1 + 2*pi*cutoff/sampleRate).
func Alpha(sampleRate, cutoffHz float64) (float64, error) {
	if err := validateRate(sampleRate); err != nil {
		return 0, err
	}

	if err := validateCutoff(cutoffHz); err != nil {
		return 0, err
	}

	return 1 / (1 + 2*math.Pi*cutoffHz/sampleRate), nil
}

// New constructs a low-pass filter for the given sample rate and cutoff.
// The filter starts with a zero previous output.
func New(sampleRate, cutoffHz float64, opts ...Option) (*Lowpass, error) {
	f, err := newWithOptions(opts)
	if err != nil {
		return nil, err
	}

	if err := f.Init(sampleRate, cutoffHz); err != nil {
		return nil, err
	}

	return f, nil
}

// NewWithAlpha constructs a low-pass filter from a smoothing coefficient in
// (0, 1]. An alpha of 1 passes input through unchanged. SampleRate and
// CutoffHz report 0 for filters built this way.
func NewWithAlpha(alpha float64, opts ...Option) (*Lowpass, error) {
	if err := validateAlpha(alpha); err != nil {
		return nil, err
	}

	f, err := newWithOptions(opts)
	if err != nil {
		return nil, err
	}

	f.alpha = alpha

	return f, nil
}

func newWithOptions(opts []Option) (*Lowpass, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Lowpass{min: cfg.min, max: cfg.max}, nil
}

// Init recomputes alpha for a new sample rate and cutoff and resets the
// previous output to zero. On error the filter is left unchanged.
func (f *Lowpass) Init(sampleRate, cutoffHz float64) error {
	alpha, err := Alpha(sampleRate, cutoffHz)
	if err != nil {
		return err
	}

	if err := validateAlpha(alpha); err != nil {
		return err
	}

	f.sampleRate = sampleRate
	f.cutoffHz = cutoffHz
	f.alpha = alpha
	f.state = State{}

	return nil
}

// SampleRate returns the sample rate in Hz.
func (f *Lowpass) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the cutoff frequency in Hz.
func (f *Lowpass) CutoffHz() float64 { return f.cutoffHz }

// Alpha returns the smoothing coefficient.
func (f *Lowpass) Alpha() float64 { return f.alpha }

// Bounds returns the output clamp range.
func (f *Lowpass) Bounds() (min, max int16) { return f.min, f.max }

// Reset clears the previous output.
func (f *Lowpass) Reset() {
	f.state = State{}
}

// State returns a copy of the filter memory.
func (f *Lowpass) State() State {
	return f.state
}

// SetState restores filter memory. The stored output is clamped to the
// filter bounds.
func (f *Lowpass) SetState(state State) {
	state.PrevOutput = max(f.min, min(f.max, state.PrevOutput))
	f.state = state
}

// ProcessSample filters one sample.
func (f *Lowpass) ProcessSample(x int16) int16 {
	y := f.alpha*float64(x) + (1-f.alpha)*float64(f.state.PrevOutput)
	out := core.ClampInt16(y, f.min, f.max)
	f.state.PrevOutput = out

	return out
}

// ProcessBlock filters src into dst and returns dst resized to len(src).
// dst may be nil or alias src.
func (f *Lowpass) ProcessBlock(dst, src []int16) []int16 {
	dst = core.EnsureLenInt16(dst, len(src))
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}

	return dst
}

// ProcessInPlace filters buf in place.
func (f *Lowpass) ProcessInPlace(buf []int16) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}
