// Package portaudio captures a host microphone through PortAudio's blocking
// stream API.
package portaudio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-micfront/source"
)

// DefaultQueueDepth is the number of buffers held between the read loop and
// the sink.
const DefaultQueueDepth = 32

// Option configures a Source.
type Option func(*Source)

// WithDevice selects the first input device whose name contains name,
// case-insensitively.
func WithDevice(name string) Option {
	return func(s *Source) { s.device = name }
}

// WithFramesPerBuffer sets the frames read per blocking call.
func WithFramesPerBuffer(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.frames = n
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Source is a PortAudio int16 input stream.
type Source struct {
	format source.Format
	device string
	frames int
	logger *slog.Logger
}

// New returns a Source for the given format. The stream is opened by Stream.
func New(format source.Format, opts ...Option) (*Source, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	s := &Source{format: format, frames: source.DefaultBlockFrames, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Format returns the capture format.
func (s *Source) Format() source.Format { return s.format }

func (s *Source) open(buf []int16) (*portaudio.Stream, error) {
	if s.device == "" {
		return portaudio.OpenDefaultStream(s.format.Channels, 0, float64(s.format.SampleRate), s.frames, buf)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.MaxInputChannels < s.format.Channels || !strings.Contains(strings.ToLower(dev.Name), strings.ToLower(s.device)) {
			continue
		}
		s.logger.Info("selected capture device", "device", dev.Name)
		return portaudio.OpenStream(portaudio.StreamParameters{
			Input: portaudio.StreamDeviceParameters{
				Device:   dev,
				Channels: s.format.Channels,
				Latency:  dev.DefaultLowInputLatency,
			},
			SampleRate:      float64(s.format.SampleRate),
			FramesPerBuffer: s.frames,
		}, buf)
	}
	return nil, fmt.Errorf("no input device matching %q", s.device)
}

// Stream captures until ctx is done or sink stops.
func (s *Source) Stream(ctx context.Context, sink source.Sink) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: initialize: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	buf := make([]int16, s.frames*s.format.Channels)
	stream, err := s.open(buf)
	if err != nil {
		return fmt.Errorf("portaudio: open: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("portaudio: start: %w", err)
	}
	s.logger.Info("capture started", "rate", s.format.SampleRate, "channels", s.format.Channels)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := source.NewQueue(DefaultQueueDepth)
	errc := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			if err := stream.Read(); err != nil {
				if ctx.Err() == nil {
					errc <- fmt.Errorf("portaudio: read: %w", err)
				}
				return
			}
			if !q.Push(buf) {
				s.logger.Debug("capture buffer full, dropping block")
			}
		}
	}()

	err = q.Drain(ctx, errc, sink)
	cancel()
	_ = stream.Stop()
	wg.Wait()
	_ = stream.Close()

	if d := q.Dropped(); d > 0 {
		s.logger.Warn("capture blocks dropped", "count", d)
	}
	return err
}
