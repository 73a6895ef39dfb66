// Package tone is a Source playing the composite microphone test tone.
package tone

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-micfront/dsp/core"
	"github.com/cwbudde/algo-micfront/dsp/dither"
	"github.com/cwbudde/algo-micfront/dsp/signal"
	"github.com/cwbudde/algo-micfront/source"
)

// Option configures a Source.
type Option func(*Source)

// WithSeed fixes the noise seed.
func WithSeed(seed int64) Option {
	return func(s *Source) { s.seed = seed }
}

// WithBlockFrames sets the frames per Sink call.
func WithBlockFrames(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.block = n
		}
	}
}

// WithRealtime paces blocks at the sample rate.
func WithRealtime(on bool) Option {
	return func(s *Source) { s.realtime = on }
}

// WithDither selects the noise added when quantizing to int16. The
// default truncates.
func WithDither(t dither.Type) Option {
	return func(s *Source) { s.dither = t }
}

// WithLoop repeats the tone until the context ends.
func WithLoop(on bool) Option {
	return func(s *Source) { s.loop = on }
}

// Source streams signal.TestTone, copied to every channel.
type Source struct {
	format   source.Format
	seconds  float64
	seed     int64
	block    int
	realtime bool
	loop     bool
	dither   dither.Type
	samples  []int16
}

// New renders seconds of test tone in the given format.
func New(format source.Format, seconds float64, opts ...Option) (*Source, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	s := &Source{
		format:  format,
		seconds: seconds,
		seed:    1,
		block:   source.DefaultBlockFrames,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(float64(format.SampleRate)), core.WithChannels(format.Channels)},
		signal.WithSeed(s.seed),
	)
	mono, err := gen.TestTone(seconds)
	if err != nil {
		return nil, fmt.Errorf("tone: %w", err)
	}

	quant, err := dither.New(dither.WithType(s.dither), dither.WithSeed(uint64(s.seed)))
	if err != nil {
		return nil, fmt.Errorf("tone: %w", err)
	}
	q := quant.ProcessTo(nil, mono)
	s.samples = make([]int16, len(q)*format.Channels)
	for i, v := range q {
		for c := range format.Channels {
			s.samples[i*format.Channels+c] = v
		}
	}

	return s, nil
}

// Format returns the stream format.
func (s *Source) Format() source.Format { return s.format }

// Samples returns the rendered interleaved samples.
func (s *Source) Samples() []int16 { return s.samples }

// Stream implements source.Source.
func (s *Source) Stream(ctx context.Context, sink source.Sink) error {
	var pacer *source.Pacer
	if s.realtime {
		pacer = source.NewPacer(s.format)
	}

	stopped := false
	guard := func(samples []int16) error {
		err := sink(samples)
		if err != nil {
			stopped = true
		}
		return err
	}

	for {
		if err := source.Blocks(ctx, s.format, s.samples, s.block, pacer, guard); err != nil || stopped || !s.loop {
			return err
		}
	}
}
