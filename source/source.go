// Package source defines where interleaved int16 audio frames come from:
// a host microphone, a recording, or a synthetic test tone. A Source pushes
// frames into a Sink, which on the host plays the role of the DFSDM
// peripheral writing into the capture ring.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultBlockFrames is the number of frames per Sink call for sources that
// are free to choose it.
const DefaultBlockFrames = 128

// ErrStop may be returned by a Sink to end streaming without error.
var ErrStop = errors.New("source: stop")

// Format describes the frames a Source produces.
type Format struct {
	SampleRate int
	Channels   int
}

// Validate reports whether the format is usable.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("source: sample rate must be > 0: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("source: channels must be > 0: %d", f.Channels)
	}
	return nil
}

// FrameDuration returns the playing time of the given number of frames.
func (f Format) FrameDuration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(f.SampleRate))
}

// Sink receives interleaved samples. The slice is only valid during the call.
type Sink func(samples []int16) error

// Source produces frames until its input ends, ctx is done, or the sink
// fails. Stream returns nil at the end of a finite input, ctx.Err() on
// cancellation and nil when the sink returns ErrStop.
type Source interface {
	Format() Format
	Stream(ctx context.Context, sink Sink) error
}

// Deliver calls sink and maps ErrStop to a clean stop.
func Deliver(sink Sink, samples []int16) (stop bool, err error) {
	if err := sink(samples); err != nil {
		if errors.Is(err, ErrStop) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}

// Pacer releases blocks at the real-time rate of a format.
type Pacer struct {
	format Format
	start  time.Time
	frames int64
	now    func() time.Time
}

// NewPacer returns a Pacer starting at the first call to Wait.
func NewPacer(format Format) *Pacer {
	return &Pacer{format: format, now: time.Now}
}

// Wait blocks until the previous frames have had time to play, then counts
// frames more.
func (p *Pacer) Wait(ctx context.Context, frames int) error {
	if p.start.IsZero() {
		p.start = p.now()
	}

	due := p.start.Add(time.Duration(p.frames * int64(time.Second) / int64(p.format.SampleRate)))
	p.frames += int64(frames)

	if d := due.Sub(p.now()); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return ctx.Err()
}

// Blocks streams samples to sink in blocks of blockFrames frames, pacing
// them in real time when pacer is non-nil.
func Blocks(ctx context.Context, format Format, samples []int16, blockFrames int, pacer *Pacer, sink Sink) error {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	step := blockFrames * format.Channels

	for off := 0; off < len(samples); off += step {
		end := min(off+step, len(samples))
		if pacer != nil {
			if err := pacer.Wait(ctx, (end-off)/format.Channels); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if stop, err := Deliver(sink, samples[off:end]); stop {
			return err
		}
	}
	return nil
}
