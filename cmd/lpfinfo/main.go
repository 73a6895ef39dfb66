// Command lpfinfo prints the response of the one-pole microphone low-pass
// for a set of cutoff frequencies.
//
// Usage:
//
//	lpfinfo [flags] [cutoff-hz ...]
//
// Without arguments it prints a default cutoff ladder.
//
// Examples:
//
//	lpfinfo
//	lpfinfo -rate 48000 5000
//	lpfinfo -rate 16000 -probe 100,1000,4000 2000 3000
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-micfront/dsp/core"
	"github.com/cwbudde/algo-micfront/dsp/filter/onepole"
)

var defaultCutoffs = []float64{250, 500, 1000, 2000, 3000, 5000}

func main() {
	rate := flag.Float64("rate", 8000, "sample rate in Hz")
	probe := flag.String("probe", "100,1000,3000", "comma-separated probe frequencies in Hz")
	decay := flag.Float64("decay", -40, "impulse decay threshold in dB below the first sample")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lpfinfo [flags] [cutoff-hz ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints alpha, -3 dB point, probe gains and impulse decay of the one-pole low-pass.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lpfinfo -rate 48000 5000\n")
		fmt.Fprintf(os.Stderr, "  lpfinfo -probe 100,1000,4000 2000 3000\n")
	}
	flag.Parse()

	probes, err := parseList(*probe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: -probe: %v\n", err)
		os.Exit(2)
	}

	cutoffs := defaultCutoffs
	if flag.NArg() > 0 {
		cutoffs, err = parseList(strings.Join(flag.Args(), ","))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
	}

	if err := printTable(os.Stdout, *rate, cutoffs, probes, *decay); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseList(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad frequency %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// decaySamples returns how many samples the impulse response takes to fall
// below thresholdDB relative to its first sample, or -1 if it never does
// within maxLen samples.
func decaySamples(f *onepole.Lowpass, thresholdDB float64, maxLen int) int {
	ir := f.ImpulseResponse(maxLen)
	if len(ir) == 0 || ir[0] == 0 {
		return -1
	}
	limit := float64(ir[0]) * core.DBToLinear(thresholdDB)
	for i, v := range ir {
		if float64(v) < limit {
			return i
		}
	}
	return -1
}

func printTable(w io.Writer, rate float64, cutoffs, probes []float64, decayDB float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	head := []string{"Cutoff [Hz]", "Alpha", "-3dB [Hz]"}
	for _, p := range probes {
		head = append(head, fmt.Sprintf("@%g Hz [dB]", p))
	}
	head = append(head, fmt.Sprintf("Decay %gdB [smp]", decayDB))

	if _, err := fmt.Fprintln(tw, strings.Join(head, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, fc := range cutoffs {
		f, err := onepole.New(rate, fc)
		if err != nil {
			return err
		}

		row := []string{
			fmt.Sprintf("%g", fc),
			fmt.Sprintf("%.6f", f.Alpha()),
			formatCorner(f.Corner3dB()),
		}
		for _, p := range probes {
			row = append(row, fmt.Sprintf("%.2f", f.MagnitudeDB(p)))
		}
		if n := decaySamples(f, decayDB, int(rate)); n >= 0 {
			row = append(row, strconv.Itoa(n))
		} else {
			row = append(row, "-")
		}

		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	return tw.Flush()
}

func formatCorner(hz float64) string {
	if hz <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", hz)
}
