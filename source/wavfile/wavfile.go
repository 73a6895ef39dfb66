// Package wavfile replays a recording as a Source. WAV files are decoded
// with go-dsp; files ending in .pcm are read as raw little-endian int16 in a
// caller-supplied format.
package wavfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mjibson/go-dsp/wav"

	"github.com/cwbudde/algo-micfront/dsp/core"
	"github.com/cwbudde/algo-micfront/pcm"
	"github.com/cwbudde/algo-micfront/source"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

var errUnsupported = errors.New("wavfile: unsupported sample format")

// Option configures a Source.
type Option func(*Source)

// WithBlockFrames sets the frames per Sink call.
func WithBlockFrames(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.block = n
		}
	}
}

// WithRealtime paces blocks at the file's sample rate.
func WithRealtime(on bool) Option {
	return func(s *Source) { s.realtime = on }
}

// WithRawFormat sets the format of raw .pcm input. The default is 8000 Hz
// mono.
func WithRawFormat(f source.Format) Option {
	return func(s *Source) { s.format = f }
}

// Source streams a file once.
type Source struct {
	path     string
	format   source.Format
	block    int
	realtime bool

	open func() (io.ReadCloser, error)
}

// Open checks the file and returns a Source for it.
func Open(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:   path,
		format: source.Format{SampleRate: 8000, Channels: 1},
		block:  source.DefaultBlockFrames,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.isWAV() {
		f, err := s.open()
		if err != nil {
			return nil, fmt.Errorf("wavfile: %w", err)
		}
		defer f.Close()

		w, err := wav.New(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("wavfile: %s: %w", path, err)
		}
		if err := checkHeader(w.Header); err != nil {
			return nil, fmt.Errorf("%w: %s", err, path)
		}
		s.format = source.Format{SampleRate: int(w.SampleRate), Channels: int(w.NumChannels)}
	}

	if err := s.format.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) isWAV() bool {
	return !strings.EqualFold(filepath.Ext(s.path), ".pcm")
}

func checkHeader(h wav.Header) error {
	switch {
	case h.AudioFormat == wavFormatPCM && (h.BitsPerSample == 8 || h.BitsPerSample == 16):
		return nil
	case h.AudioFormat == wavFormatFloat && h.BitsPerSample == 32:
		return nil
	default:
		return fmt.Errorf("%w: format %d, %d bits", errUnsupported, h.AudioFormat, h.BitsPerSample)
	}
}

// Format returns the stream format.
func (s *Source) Format() source.Format { return s.format }

// Stream implements source.Source.
func (s *Source) Stream(ctx context.Context, sink source.Sink) error {
	f, err := s.open()
	if err != nil {
		return fmt.Errorf("wavfile: %w", err)
	}
	defer f.Close()

	var next func([]int16) (int, error)
	if s.isWAV() {
		w, err := wav.New(bufio.NewReader(f))
		if err != nil {
			return fmt.Errorf("wavfile: %s: %w", s.path, err)
		}
		next = wavReader(w)
	} else {
		r := pcm.NewReader(bufio.NewReader(f))
		next = r.ReadFull
	}

	var pacer *source.Pacer
	if s.realtime {
		pacer = source.NewPacer(s.format)
	}

	buf := make([]int16, s.block*s.format.Channels)
	for {
		n, err := next(buf)
		n -= n % s.format.Channels
		if n > 0 {
			if pacer != nil {
				if werr := pacer.Wait(ctx, n/s.format.Channels); werr != nil {
					return werr
				}
			} else if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if stop, serr := source.Deliver(sink, buf[:n]); stop {
				return serr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return fmt.Errorf("wavfile: %s: %w", s.path, err)
		}
	}
}

// wavReader adapts go-dsp's typed reads to int16 blocks. The header's
// sample count is rounded down to a multiple of eight, so the tail past it
// is read one sample at a time until EOF.
func wavReader(w *wav.Wav) func([]int16) (int, error) {
	remaining := w.Samples
	return func(dst []int16) (int, error) {
		if remaining > 0 {
			n := min(len(dst), remaining)
			data, err := w.ReadSamples(n)
			if err != nil {
				return 0, err
			}
			remaining -= n
			return n, convert(dst, data)
		}

		for i := range dst {
			data, err := w.ReadSamples(1)
			if err != nil {
				if i > 0 && errors.Is(err, io.EOF) {
					return i, nil
				}
				return i, err
			}
			if err := convert(dst[i:], data); err != nil {
				return i, err
			}
		}
		return len(dst), nil
	}
}

func convert(dst []int16, data any) error {
	switch d := data.(type) {
	case []int16:
		copy(dst, d)
	case []uint8:
		for i, v := range d {
			dst[i] = int16(int(v)-128) << 8
		}
	case []float32:
		for i, v := range d {
			dst[i] = core.SaturateInt16(float64(v) * core.MaxInt16)
		}
	default:
		return fmt.Errorf("%w: %T", errUnsupported, data)
	}
	return nil
}
