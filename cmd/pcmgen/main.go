// Command pcmgen writes the composite microphone test tone as raw PCM, a
// timestamped CSV and an info sidecar.
//
// Usage:
//
//	pcmgen [flags]
//
// Examples:
//
//	pcmgen
//	pcmgen -rate 16000 -seconds 5 -out tone
//	pcmgen -csv=false -seed 42
//	pcmgen -dither tpdf
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwbudde/algo-micfront/dsp/core"
	"github.com/cwbudde/algo-micfront/dsp/dither"
	"github.com/cwbudde/algo-micfront/dsp/signal"
	"github.com/cwbudde/algo-micfront/pcm"
)

type options struct {
	rate    float64
	seconds float64
	seed    int64
	out     string
	csv     bool
	dither  dither.Type
	now     time.Time
}

var toneNotes = []string{
	"440 Hz fundamental",
	"880 Hz second harmonic",
	"1320 Hz third harmonic",
	"200 Hz low-frequency component",
	"gaussian noise",
	"decaying transients at 2 s, 4.5 s, 7 s and 9 s",
}

func main() {
	o := options{now: time.Now()}
	flag.Float64Var(&o.rate, "rate", 8000, "sample rate in Hz")
	flag.Float64Var(&o.seconds, "seconds", 10, "duration in seconds")
	flag.Int64Var(&o.seed, "seed", time.Now().UnixNano(), "noise seed")
	flag.StringVar(&o.out, "out", "", "output base name (default test_audio_<timestamp>)")
	flag.BoolVar(&o.csv, "csv", true, "also write a timestamp,value CSV")
	flag.Func("dither", "quantization noise: none, rect or tpdf (default none)", func(s string) error {
		t, err := dither.ParseType(s)
		o.dither = t
		return err
	})
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pcmgen [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Writes the microphone test tone as <out>.pcm, <out>.csv and <out>_info.txt.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer) error {
	if o.out == "" {
		o.out = "test_audio_" + o.now.Format("20060102_150405")
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(o.rate)},
		signal.WithSeed(o.seed),
	)
	tone, err := gen.TestTone(o.seconds)
	if err != nil {
		return err
	}
	quant, err := dither.New(dither.WithType(o.dither), dither.WithSeed(uint64(o.seed)))
	if err != nil {
		return err
	}
	samples := quant.ProcessTo(nil, tone)

	pcmPath := o.out + ".pcm"
	if err := pcm.WriteFile(pcmPath, samples); err != nil {
		return err
	}
	written := []string{pcmPath}

	if o.csv {
		csvPath := o.out + ".csv"
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		if err := pcm.WriteCSV(f, samples, o.rate, o.now); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, csvPath)
	}

	info := pcm.NewInfo(samples, o.rate, 1)
	info.Output = pcmPath
	info.Created = o.now
	info.Notes = append(info.Notes, toneNotes...)
	info.Notes = append(info.Notes, fmt.Sprintf("noise seed %d", o.seed), "dither "+o.dither.String())

	infoPath := pcm.InfoPath(pcmPath)
	if err := info.Save(infoPath); err != nil {
		return err
	}
	written = append(written, infoPath)

	fmt.Fprintf(stdout, "%d samples at %.0f Hz (%.2f s), range %d to %d, std dev %.2f\n",
		info.Samples, info.SampleRate, info.Duration().Seconds(), info.Min, info.Max, info.StdDev)
	for _, p := range written {
		fmt.Fprintf(stdout, "  wrote %s\n", p)
	}

	return nil
}
