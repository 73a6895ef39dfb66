// Package playback plays the captured stream on the host's audio output so
// a microphone front end can be listened to while it is relayed.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultLatency is the default amount of audio the Monitor buffers.
const DefaultLatency = 200 * time.Millisecond

var errInvalidFormat = errors.New("playback: invalid format")

// Player is the part of *oto.Player the Monitor drives.
type Player interface {
	Play()
	Close() error
}

// Option configures a Monitor.
type Option func(*options)

type options struct {
	latency time.Duration
	logger  *slog.Logger
}

// WithLatency sets the buffered duration. Older audio is dropped beyond it.
func WithLatency(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.latency = d
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Monitor is a capture.Transport that queues halves for playback.
type Monitor struct {
	buf       *Buffer
	player    Player
	logger    *slog.Logger
	closeOnce sync.Once
}

// New opens the default audio output through oto. Only one oto context
// may exist per process, so New should be called at most once.
func New(sampleRate, channels int, opts ...Option) (*Monitor, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: rate %d channels %d", errInvalidFormat, sampleRate, channels)
	}
	o := applyOptions(opts)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("playback: open output: %w", err)
	}
	<-ready

	buf := NewBuffer(bufferSamples(sampleRate, channels, o.latency))
	m := newMonitor(buf, ctx.NewPlayer(buf), o.logger)
	o.logger.Info("playback started", "rate", sampleRate, "channels", channels, "latency", o.latency)

	return m, nil
}

// NewWithPlayer builds a Monitor around a player that already reads from buf.
func NewWithPlayer(buf *Buffer, player Player, opts ...Option) *Monitor {
	return newMonitor(buf, player, applyOptions(opts).logger)
}

func newMonitor(buf *Buffer, player Player, logger *slog.Logger) *Monitor {
	player.Play()
	return &Monitor{buf: buf, player: player, logger: logger}
}

func applyOptions(opts []Option) options {
	o := options{latency: DefaultLatency, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func bufferSamples(sampleRate, channels int, latency time.Duration) int {
	return max(channels, int(int64(sampleRate)*int64(channels)*int64(latency)/int64(time.Second)))
}

// TransmitAsync copies samples into the playback buffer and calls done.
func (m *Monitor) TransmitAsync(samples []int16, done func(error)) error {
	m.buf.Write(samples)
	if done != nil {
		done(nil)
	}
	return nil
}

// Buffer returns the playback buffer.
func (m *Monitor) Buffer() *Buffer { return m.buf }

// Close stops playback.
func (m *Monitor) Close() error {
	var err error
	m.closeOnce.Do(func() {
		dropped, underruns := m.buf.Counters()
		m.logger.Info("playback stopped", "dropped", dropped, "underruns", underruns)
		err = m.player.Close()
	})
	return err
}

var _ io.Reader = (*Buffer)(nil)
