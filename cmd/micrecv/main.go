// Command micrecv records PCM relayed over a serial line (or from a file),
// saves it with an info sidecar and prints level and spectrum summaries.
//
// Usage:
//
//	micrecv [flags]
//
// Examples:
//
//	micrecv -port /dev/ttyUSB0 -duration 10s
//	micrecv -in capture.pcm -window blackman -fft 8192
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-micfront/dsp/window"
	"github.com/cwbudde/algo-micfront/internal/config"
	"github.com/cwbudde/algo-micfront/internal/logging"
	"github.com/cwbudde/algo-micfront/pcm"
	frequencystats "github.com/cwbudde/algo-micfront/stats/frequency"
	timestats "github.com/cwbudde/algo-micfront/stats/time"
	"github.com/cwbudde/algo-micfront/transport/serial"
)

const readBlock = 1024

// octaveCenters are the nominal octave band centres reported by summarize.
var octaveCenters = []float64{63, 125, 250, 500, 1000, 2000, 4000, 8000}

type options struct {
	port     string
	baud     int
	in       string
	out      string
	rate     int
	duration time.Duration
	window   string
	fftSize  int
}

type sampleReader interface {
	Read(dst []int16) (int, error)
}

func main() {
	cfg := config.Load()
	o := options{
		port:     cfg.SerialPort,
		baud:     cfg.Baud,
		out:      cfg.OutFile,
		rate:     cfg.SampleRate,
		duration: cfg.Duration,
	}
	if o.duration == 0 {
		o.duration = 10 * time.Second
	}

	flag.StringVar(&o.port, "port", o.port, "serial port device")
	flag.IntVar(&o.baud, "baud", o.baud, "serial baud rate")
	flag.StringVar(&o.in, "in", "", "read a raw .pcm file instead of a serial port")
	flag.StringVar(&o.out, "out", o.out, "output .pcm path (default uart_<timestamp>.pcm)")
	flag.IntVar(&o.rate, "rate", o.rate, "sample rate in Hz")
	flag.DurationVar(&o.duration, "duration", o.duration, "recording time (0 = until EOF or interrupt)")
	flag.StringVar(&o.window, "window", "hann", "analysis window")
	flag.IntVar(&o.fftSize, "fft", 0, "FFT size, a power of two (0 = fit the recording)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil || *verbose {
		level = slog.LevelDebug
	}
	logger, err := logging.New(os.Stderr, level, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, os.Stdout, logger); err != nil {
		logger.Error("micrecv failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, stdout io.Writer, logger *slog.Logger) error {
	wt, err := window.Parse(o.window)
	if err != nil {
		return err
	}
	if o.rate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %d", o.rate)
	}

	var (
		r      sampleReader
		source string
	)
	switch {
	case o.in != "":
		f, err := os.Open(o.in)
		if err != nil {
			return err
		}
		defer f.Close()
		r, source = pcm.NewReader(f), o.in
	case o.port != "":
		p, err := serial.Open(serial.Config{Name: o.port, Baud: o.baud}, serial.WithLogger(logger))
		if err != nil {
			return err
		}
		defer p.Close()
		r, source = p, o.port
	default:
		return errors.New("no input: set -port or -in")
	}

	maxSamples := 0
	if o.duration > 0 {
		maxSamples = int(o.duration.Seconds() * float64(o.rate))
	}

	logger.Info("receiving", "from", source, "rate", o.rate, "duration", o.duration)
	samples, err := receive(ctx, r, maxSamples, logger)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("no samples received")
	}

	if o.out == "" {
		o.out = "uart_" + time.Now().Format("20060102_150405") + ".pcm"
	}
	if err := pcm.WriteFile(o.out, samples); err != nil {
		return err
	}
	info := pcm.NewInfo(samples, float64(o.rate), 1)
	info.Source = source
	info.Output = o.out
	if err := info.Save(pcm.InfoPath(o.out)); err != nil {
		return err
	}
	logger.Info("recording saved", "path", o.out, "samples", len(samples))

	var opts []frequencystats.AnalyzeOption
	opts = append(opts, frequencystats.WithWindow(wt))
	if o.fftSize > 0 {
		opts = append(opts, frequencystats.WithFFTSize(o.fftSize))
	}
	sp, err := frequencystats.Analyze(samples, float64(o.rate), opts...)
	if err != nil {
		return err
	}

	return summarize(stdout, timestats.Calculate(samples), sp)
}

// receive reads until ctx is done, the reader ends, or maxSamples (if > 0)
// have arrived.
func receive(ctx context.Context, r sampleReader, maxSamples int, logger *slog.Logger) ([]int16, error) {
	var (
		out   []int16
		buf   = make([]int16, readBlock)
		level = timestats.NewStreamingStats()
		last  = time.Now()
	)

	for ctx.Err() == nil {
		want := len(buf)
		if maxSamples > 0 {
			want = min(want, maxSamples-len(out))
			if want == 0 {
				break
			}
		}

		n, err := r.Read(buf[:want])
		out = append(out, buf[:n]...)
		level.Update(buf[:n])

		if time.Since(last) >= time.Second {
			st := level.Result()
			logger.Debug("receive progress", "samples", len(out), "rms_dbfs", st.RMS_dBFS, "peak_dbfs", st.Peak_dBFS)
			level.Reset()
			last = time.Now()
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return out, err
		}
	}

	return out, nil
}

func summarize(w io.Writer, st timestats.Stats, sp *frequencystats.Spectrum) error {
	fs := sp.Stats()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Level\t\n")
	fmt.Fprintf(tw, "  samples\t%d\n", st.Length)
	fmt.Fprintf(tw, "  range\t%d to %d\n", st.Min, st.Max)
	fmt.Fprintf(tw, "  dc\t%.2f\n", st.DC)
	fmt.Fprintf(tw, "  rms\t%.2f dBFS\n", st.RMS_dBFS)
	fmt.Fprintf(tw, "  peak\t%.2f dBFS\n", st.Peak_dBFS)
	fmt.Fprintf(tw, "  crest factor\t%.2f dB\n", st.CrestFactorDB)
	fmt.Fprintf(tw, "  clipped\t%d\n", st.Clipped)
	fmt.Fprintf(tw, "Spectrum\t\n")
	fmt.Fprintf(tw, "  fft size\t%d (%s)\n", sp.FFTSize, sp.Window)
	fmt.Fprintf(tw, "  resolution\t%.2f Hz\n", sp.Resolution())
	fmt.Fprintf(tw, "  nyquist\t%.1f Hz\n", sp.Nyquist())
	fmt.Fprintf(tw, "  centroid\t%.1f Hz\n", fs.Centroid)
	fmt.Fprintf(tw, "  rolloff\t%.1f Hz\n", fs.Rolloff)
	fmt.Fprintf(tw, "  flatness\t%.4f\n", fs.Flatness)

	if total := sp.BandEnergy(0, sp.Nyquist()); total > 0 {
		fmt.Fprintf(tw, "Octave bands\t\n")
		for _, fc := range octaveCenters {
			lo, hi := fc/math.Sqrt2, fc*math.Sqrt2
			if lo >= sp.Nyquist() {
				break
			}
			fmt.Fprintf(tw, "  %.0f Hz\t%.1f %%\n", fc, 100*sp.BandEnergy(lo, hi)/total)
		}
	}

	return tw.Flush()
}
