// Command csv2pcm converts a timestamp,value CSV capture into raw int16
// little-endian PCM with an info sidecar.
//
// Usage:
//
//	csv2pcm [flags] capture.csv
//
// Examples:
//
//	csv2pcm capture.csv
//	csv2pcm -f int16_t -r 16000 -o mic.pcm capture.csv
//	csv2pcm -no-normalize -no-remove-dc capture.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-micfront/pcm"
)

type options struct {
	input      string
	output     string
	format     string
	sampleRate float64
	noNorm     bool
	noDC       bool
}

func main() {
	var o options
	flag.StringVar(&o.output, "o", "", "output .pcm path (default: input with .pcm extension)")
	flag.StringVar(&o.format, "f", "uint16_t", "value format: uint16_t or int16_t")
	flag.Float64Var(&o.sampleRate, "r", 8000, "nominal sample rate in Hz")
	flag.BoolVar(&o.noNorm, "no-normalize", false, "keep raw values (no offset or scaling)")
	flag.BoolVar(&o.noDC, "no-remove-dc", false, "keep the DC component")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: csv2pcm [flags] capture.csv\n\n")
		fmt.Fprintf(os.Stderr, "Converts timestamp,value rows to int16 little-endian PCM.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	o.input = flag.Arg(0)

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer) error {
	format, err := pcm.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if o.output == "" {
		o.output = strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".pcm"
	}

	f, err := os.Open(o.input)
	if err != nil {
		return err
	}
	defer f.Close()

	conv, err := pcm.ConvertCSV(f,
		pcm.WithFormat(format),
		pcm.WithSampleRate(o.sampleRate),
		pcm.WithNormalize(!o.noNorm),
		pcm.WithRemoveDC(!o.noDC),
	)
	if err != nil {
		return err
	}

	for _, w := range conv.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}

	if err := pcm.WriteFile(o.output, conv.Samples); err != nil {
		return err
	}

	info := pcm.NewInfo(conv.Samples, o.sampleRate, 1)
	info.Source = o.input
	info.Output = o.output
	info.Format = fmt.Sprintf("int16 little-endian (from %s)", conv.Format)
	info.Created = time.Now()
	if conv.MeasuredRate > 0 {
		info.Notes = append(info.Notes, fmt.Sprintf("measured rate %.2f Hz", conv.MeasuredRate))
	}
	info.Notes = append(info.Notes, fmt.Sprintf("raw range %d to %d", conv.RawMin, conv.RawMax))
	info.Notes = append(info.Notes, conv.Warnings...)

	infoPath := pcm.InfoPath(o.output)
	if err := info.Save(infoPath); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%d samples, range %d to %d -> %s (%d bytes)\n",
		info.Samples, info.Min, info.Max, o.output, info.Bytes())
	fmt.Fprintf(stdout, "info: %s\n", infoPath)

	return nil
}
