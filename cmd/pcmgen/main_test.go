package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-micfront/dsp/dither"
	"github.com/cwbudde/algo-micfront/pcm"
)

func TestRunWritesAllFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "tone")
	var out bytes.Buffer

	err := run(options{rate: 8000, seconds: 0.5, seed: 1, out: base, csv: true, now: time.Unix(1700000000, 0)}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	samples, err := pcm.ReadFile(base + ".pcm")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(samples) != 4000 {
		t.Fatalf("samples = %d, want 4000", len(samples))
	}

	f, err := os.Open(base + ".csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	conv, err := pcm.ConvertCSV(f, pcm.WithFormat(pcm.FormatInt16), pcm.WithNormalize(false), pcm.WithRemoveDC(false))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	if len(conv.Samples) != len(samples) || conv.Samples[100] != samples[100] {
		t.Fatal("csv does not match pcm")
	}

	info, err := os.ReadFile(base + "_info.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "440 Hz fundamental") || !strings.Contains(string(info), "noise seed 1") {
		t.Fatalf("info sidecar:\n%s", info)
	}
	if !strings.Contains(out.String(), "4000 samples at 8000 Hz") {
		t.Fatalf("summary = %q", out.String())
	}
}

func TestRunDefaultName(t *testing.T) {
	t.Chdir(t.TempDir())

	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if err := run(options{rate: 8000, seconds: 0.01, seed: 1, now: now}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat("test_audio_20240301_123000.pcm"); err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	if _, err := os.Stat("test_audio_20240301_123000.csv"); !os.IsNotExist(err) {
		t.Fatalf("csv written without -csv: %v", err)
	}
}

func TestRunBadDuration(t *testing.T) {
	err := run(options{rate: 8000, seconds: 0, out: filepath.Join(t.TempDir(), "x")}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("run() accepted zero duration")
	}
}

func TestRunDitherNoted(t *testing.T) {
	base := filepath.Join(t.TempDir(), "tone")
	o := options{rate: 8000, seconds: 0.1, seed: 2, out: base, dither: dither.Triangular, now: time.Unix(0, 0)}
	if err := run(o, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	info, err := os.ReadFile(base + "_info.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "dither tpdf") {
		t.Fatalf("info sidecar:\n%s", info)
	}
}
