// Package malgo captures a host microphone through miniaudio.
package malgo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/cwbudde/algo-micfront/source"
)

// DefaultQueueDepth is the number of device periods buffered between the
// audio thread and Stream.
const DefaultQueueDepth = 32

// Option configures a Source.
type Option func(*Source)

// WithDevice selects the first capture device whose name contains name,
// case-insensitively. The default device is used when nothing matches.
func WithDevice(name string) Option {
	return func(s *Source) { s.device = name }
}

// WithPeriodFrames sets the device period in frames.
func WithPeriodFrames(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.period = n
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

// Source is a signed 16-bit capture device.
type Source struct {
	format source.Format
	device string
	period int
	logger *slog.Logger
}

// New returns a Source for the given format. The device is opened by Stream.
func New(format source.Format, opts ...Option) (*Source, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	s := &Source{format: format, period: source.DefaultBlockFrames, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Format returns the capture format.
func (s *Source) Format() source.Format { return s.format }

// Stream captures until ctx is done or sink stops.
func (s *Source) Stream(ctx context.Context, sink source.Sink) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		s.logger.Debug("malgo", "msg", strings.TrimSpace(msg))
	})
	if err != nil {
		return fmt.Errorf("malgo: init context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(s.format.Channels)
	cfg.SampleRate = uint32(s.format.SampleRate)
	cfg.PeriodSizeInFrames = uint32(s.period)
	cfg.Alsa.NoMMap = 1

	if s.device != "" {
		infos, err := mctx.Devices(malgo.Capture)
		if err != nil {
			return fmt.Errorf("malgo: list devices: %w", err)
		}
		for _, info := range infos {
			if strings.Contains(strings.ToLower(info.Name()), strings.ToLower(s.device)) {
				cfg.Capture.DeviceID = info.ID.Pointer()
				s.logger.Info("selected capture device", "device", info.Name())
				break
			}
		}
	}

	q := source.NewQueue(DefaultQueueDepth)
	channels := int(cfg.Capture.Channels)
	onRecv := func(_, input []byte, frames uint32) {
		n := int(frames) * channels
		if len(input) < 2*n || n == 0 {
			return
		}
		q.Push(unsafe.Slice((*int16)(unsafe.Pointer(&input[0])), n))
	}

	errc := make(chan error, 1)
	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: onRecv,
		Stop: func() {
			select {
			case errc <- fmt.Errorf("malgo: device stopped"):
			default:
			}
		},
	})
	if err != nil {
		return fmt.Errorf("malgo: init device: %w", err)
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return fmt.Errorf("malgo: start: %w", err)
	}
	s.logger.Info("capture started", "rate", dev.SampleRate(), "channels", dev.CaptureChannels())

	err = q.Drain(ctx, errc, sink)
	_ = dev.Stop()
	if d := q.Dropped(); d > 0 {
		s.logger.Warn("capture blocks dropped", "count", d)
	}
	return err
}
