package pcm

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-micfront/dsp/core"
)

// Format is the sample representation in a CSV capture.
type Format int

const (
	// FormatUint16 holds unsigned ADC codes in [0, 65535].
	FormatUint16 Format = iota
	// FormatInt16 holds signed samples in [-32768, 32767].
	FormatInt16
)

func (f Format) String() string {
	switch f {
	case FormatUint16:
		return "uint16_t"
	case FormatInt16:
		return "int16_t"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts "uint16", "uint16_t", "int16" and "int16_t".
func ParseFormat(s string) (Format, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "_t") {
	case "uint16":
		return FormatUint16, nil
	case "int16":
		return FormatInt16, nil
	default:
		return FormatUint16, fmt.Errorf("pcm: unknown format %q", s)
	}
}

// RateTolerance is the relative deviation between measured and nominal
// sample rate above which ConvertCSV adds a warning.
const RateTolerance = 0.1

// ConvertOption configures ConvertCSV.
type ConvertOption func(*convertConfig)

type convertConfig struct {
	format     Format
	sampleRate float64
	normalize  bool
	removeDC   bool
}

// WithFormat sets the CSV sample format. The default is FormatUint16.
func WithFormat(f Format) ConvertOption {
	return func(c *convertConfig) { c.format = f }
}

// WithSampleRate sets the nominal sample rate. The default is 8000 Hz.
func WithSampleRate(hz float64) ConvertOption {
	return func(c *convertConfig) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithNormalize controls normalization (default on). For FormatUint16 it
// also selects the -32768 offset into signed range; without it unsigned
// codes are stored bit-for-bit.
func WithNormalize(on bool) ConvertOption {
	return func(c *convertConfig) { c.normalize = on }
}

// WithRemoveDC controls mean removal (default on). Full-scale
// normalization only runs when mean removal is off.
func WithRemoveDC(on bool) ConvertOption {
	return func(c *convertConfig) { c.removeDC = on }
}

// Conversion is the result of ConvertCSV.
type Conversion struct {
	Samples    []int16
	Format     Format
	SampleRate float64
	// MeasuredRate is derived from the timestamp column; 0 when fewer than
	// two distinct timestamps were read.
	MeasuredRate  float64
	HeaderSkipped bool
	// RawMin and RawMax are the values as read, before clipping.
	RawMin, RawMax int64
	Clipped        int
	Warnings       []string
}

// ConvertCSV reads timestamp,value rows and converts them to int16 PCM.
// A first row whose timestamp is not numeric is treated as a header; rows
// with fewer than two fields are skipped.
func ConvertCSV(r io.Reader, opts ...ConvertOption) (*Conversion, error) {
	cfg := convertConfig{
		format:     FormatUint16,
		sampleRate: 8000,
		normalize:  true,
		removeDC:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	conv := &Conversion{Format: cfg.format, SampleRate: cfg.sampleRate}

	var (
		values     []float64
		firstStamp float64
		lastStamp  float64
	)

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pcm: csv: %w", err)
		}
		if len(rec) < 2 {
			continue
		}

		stamp, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			if line == 1 {
				conv.HeaderSkipped = true
				continue
			}
			return nil, fmt.Errorf("pcm: csv line %d: bad timestamp %q", line, rec[0])
		}

		v, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pcm: csv line %d: bad value %q", line, rec[1])
		}

		if len(values) == 0 {
			firstStamp = stamp
			conv.RawMin, conv.RawMax = v, v
		}
		lastStamp = stamp
		conv.RawMin = min(conv.RawMin, v)
		conv.RawMax = max(conv.RawMax, v)

		values = append(values, float64(clipValue(cfg.format, v, &conv.Clipped)))
	}

	if len(values) == 0 {
		return nil, errors.New("pcm: csv holds no samples")
	}

	if conv.Clipped > 0 {
		conv.Warnings = append(conv.Warnings,
			fmt.Sprintf("%d values outside %s range were clipped", conv.Clipped, cfg.format))
	}

	offset := cfg.format == FormatUint16 && cfg.normalize
	if offset {
		for i := range values {
			values[i] -= 32768
		}
	}

	if cfg.removeDC {
		mean := 0.0
		for _, v := range values {
			mean += v
		}
		mean /= float64(len(values))
		for i := range values {
			values[i] -= mean
		}
	}

	if cfg.normalize && !cfg.removeDC {
		peak := 0.0
		for _, v := range values {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak > 0 {
			for i := range values {
				values[i] = values[i] / peak * core.MaxInt16
			}
		}
	}

	raw := cfg.format == FormatUint16 && !cfg.normalize && !cfg.removeDC

	conv.Samples = make([]int16, len(values))
	for i, v := range values {
		if raw {
			conv.Samples[i] = int16(uint16(v))
		} else {
			conv.Samples[i] = core.SaturateInt16(v)
		}
	}

	if len(values) > 1 && lastStamp != firstStamp {
		conv.MeasuredRate = float64(len(values)-1) / (lastStamp - firstStamp)
		if math.Abs(conv.MeasuredRate-cfg.sampleRate)/cfg.sampleRate > RateTolerance {
			conv.Warnings = append(conv.Warnings,
				fmt.Sprintf("measured rate %.2f Hz differs from nominal %.0f Hz", conv.MeasuredRate, cfg.sampleRate))
		}
	}

	return conv, nil
}

func clipValue(f Format, v int64, clipped *int) int64 {
	lo, hi := int64(0), int64(math.MaxUint16)
	if f == FormatInt16 {
		lo, hi = math.MinInt16, math.MaxInt16
	}
	if v < lo || v > hi {
		*clipped++
		return min(max(v, lo), hi)
	}
	return v
}

// WriteCSV writes samples as timestamp,value rows with a header line. The
// timestamps are Unix seconds starting at start and spaced 1/sampleRate.
func WriteCSV(w io.Writer, samples []int16, sampleRate float64, start time.Time) error {
	if !(sampleRate > 0) {
		return fmt.Errorf("pcm: csv: sample rate must be > 0: %v", sampleRate)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "value"}); err != nil {
		return fmt.Errorf("pcm: csv: %w", err)
	}

	t0 := float64(start.UnixNano()) / 1e9
	row := make([]string, 2)
	for i, s := range samples {
		row[0] = strconv.FormatFloat(t0+float64(i)/sampleRate, 'f', 6, 64)
		row[1] = strconv.Itoa(int(s))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("pcm: csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("pcm: csv: %w", err)
	}
	return nil
}
