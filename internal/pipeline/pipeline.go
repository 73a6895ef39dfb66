// Package pipeline wires a capture source through the optional low-pass
// filters into the double-buffered relay, the same path the firmware takes
// from the DFSDM peripheral to the UART.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-micfront/capture"
	"github.com/cwbudde/algo-micfront/dsp/core"
	"github.com/cwbudde/algo-micfront/dsp/filter/onepole"
	"github.com/cwbudde/algo-micfront/internal/config"
	"github.com/cwbudde/algo-micfront/source"
)

// MicChannel is the relay channel carrying the interleaved microphones.
const MicChannel capture.ChannelID = 1

// DefaultStallTimeout is how long Sink waits for the transport to give a
// half back before writing over it anyway.
const DefaultStallTimeout = time.Second

// Settings is the capture layout and filter setup.
type Settings struct {
	SampleRate int
	Channels   int
	Frames     int
	Filter     bool
	CutoffHz   float64

	// StallTimeout bounds the wait for an in-flight half. Zero means
	// DefaultStallTimeout.
	StallTimeout time.Duration
}

// FromConfig extracts the pipeline settings.
func FromConfig(c *config.Config) Settings {
	return Settings{
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
		Frames:     c.Frames,
		Filter:     c.Filter,
		CutoffHz:   c.CutoffHz,
	}
}

// Pipeline filters interleaved frames and feeds them to the relay.
type Pipeline struct {
	channels int
	filters  []*onepole.Lowpass
	ring     *capture.Ring
	relay    *capture.Relay
	feeder   *capture.Feeder
	scratch  []int16
	logger   *slog.Logger

	stall    time.Duration
	released chan struct{}
	done     <-chan struct{}
	stalls   atomic.Uint64
}

// New builds the ring, relay and filters for s, sending every completed
// half to t.
func New(s Settings, t capture.Transport, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	n, err := capture.BufferLength(s.SampleRate, s.Channels, s.Frames)
	if err != nil {
		return nil, err
	}
	ring, err := capture.NewRing(n)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		channels: s.Channels,
		ring:     ring,
		logger:   logger,
		stall:    s.StallTimeout,
		released: make(chan struct{}, 1),
	}
	if p.stall <= 0 {
		p.stall = DefaultStallTimeout
	}

	// The relay frees the half before calling done, so a wake-up always
	// follows the release it reports.
	paced := capture.TransportFunc(func(samples []int16, done func(error)) error {
		return t.TransmitAsync(samples, func(err error) {
			done(err)
			select {
			case p.released <- struct{}{}:
			default:
			}
		})
	})

	p.relay, err = capture.NewRelay([]capture.Channel{
		{ID: MicChannel, Name: "mic", Ring: ring, Transport: paced},
	}, capture.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	p.feeder, err = capture.NewFeeder(MicChannel, ring, p.relay)
	if err != nil {
		return nil, err
	}

	if s.Filter {
		p.filters = make([]*onepole.Lowpass, s.Channels)
		for i := range p.filters {
			f, err := onepole.New(float64(s.SampleRate), s.CutoffHz)
			if err != nil {
				return nil, fmt.Errorf("pipeline: channel %d: %w", i, err)
			}
			p.filters[i] = f
		}
		logger.Info("low-pass enabled", "cutoff_hz", s.CutoffHz, "alpha", p.filters[0].Alpha())
	}

	logger.Debug("capture buffer", "length", n, "half", ring.HalfLen())

	return p, nil
}

// Relay returns the relay behind the pipeline.
func (p *Pipeline) Relay() *capture.Relay { return p.relay }

// Ring returns the capture buffer.
func (p *Pipeline) Ring() *capture.Ring { return p.ring }

// Stats returns the microphone channel counters.
func (p *Pipeline) Stats() capture.Stats {
	st, _ := p.relay.Stats(MicChannel)
	return st
}

// Stalls returns how many times Sink gave up waiting for an in-flight half.
// Each stall normally shows up as one overrun in Stats.
func (p *Pipeline) Stalls() uint64 { return p.stalls.Load() }

// Sink filters samples and writes them into the capture buffer. Before
// filling a half it waits, up to the stall timeout, for the transport to
// finish with it. Overruns and transport failures are counted by the relay
// and do not stop the stream.
func (p *Pipeline) Sink(samples []int16) error {
	if len(samples)%p.channels != 0 {
		return fmt.Errorf("pipeline: %d samples is not a whole number of %d-channel frames", len(samples), p.channels)
	}

	out := samples
	if p.filters != nil {
		p.scratch = core.EnsureLenInt16(p.scratch, len(samples))
		out = p.scratch
		for i, v := range samples {
			out[i] = p.filters[i%p.channels].ProcessSample(v)
		}
	}

	for len(out) > 0 {
		h, room := p.feeder.Filling()
		if room == p.ring.HalfLen() {
			p.waitFree(h)
		}

		n := min(room, len(out))
		err := p.feeder.Write(out[:n])
		out = out[n:]

		if errors.Is(err, capture.ErrUnknownChannel) {
			return err
		}
		if err != nil && !errors.Is(err, capture.ErrOverrun) {
			p.logger.Debug("capture write", "error", err)
		}
	}
	return nil
}

func (p *Pipeline) waitFree(h capture.Half) {
	if !p.ring.InFlight(h) {
		return
	}

	timer := time.NewTimer(p.stall)
	defer timer.Stop()

	for p.ring.InFlight(h) {
		select {
		case <-p.released:
		case <-timer.C:
			p.stalls.Add(1)
			p.logger.Debug("transport stalled", "half", h.String(), "timeout", p.stall)
			return
		case <-p.done:
			return
		}
	}
}

// Run streams src through the pipeline until it ends or ctx is done.
// Cancellation is not reported as an error.
func (p *Pipeline) Run(ctx context.Context, src source.Source) error {
	if f := src.Format(); f.Channels != p.channels {
		return fmt.Errorf("pipeline: source has %d channels, pipeline %d", f.Channels, p.channels)
	}

	p.done = ctx.Done()
	defer func() { p.done = nil }()

	err := src.Stream(ctx, p.Sink)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return err
}

// Reset clears the filter state and rewinds the capture position.
func (p *Pipeline) Reset() {
	for _, f := range p.filters {
		f.Reset()
	}
	p.feeder.Reset()
}
