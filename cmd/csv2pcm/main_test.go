package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-micfront/internal/testutil"
	"github.com/cwbudde/algo-micfront/pcm"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDefaultOutput(t *testing.T) {
	in := writeCSV(t, "time,value\n0,32768\n0.000125,32778\n0.00025,32758\n")

	var out bytes.Buffer
	if err := run(options{input: in, format: "uint16_t", sampleRate: 8000}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	pcmPath := strings.TrimSuffix(in, ".csv") + ".pcm"
	got, err := pcm.ReadFile(pcmPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	testutil.RequireInt16Equal(t, got, []int16{0, 10, -10})

	info, err := os.ReadFile(pcm.InfoPath(pcmPath))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "from uint16_t") || !strings.Contains(string(info), "measured rate 8000.00 Hz") {
		t.Fatalf("info sidecar:\n%s", info)
	}
	if strings.Contains(out.String(), "warning") {
		t.Fatalf("unexpected warning: %s", out.String())
	}
}

func TestRunWarnsOnRate(t *testing.T) {
	in := writeCSV(t, "0,1\n1,2\n2,3\n")
	outPath := filepath.Join(t.TempDir(), "x.pcm")

	var out bytes.Buffer
	err := run(options{input: in, output: outPath, format: "int16_t", sampleRate: 8000, noNorm: true, noDC: true}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "warning: measured rate 1.00 Hz") {
		t.Fatalf("output = %q", out.String())
	}

	got, _ := pcm.ReadFile(outPath)
	testutil.RequireInt16Equal(t, got, []int16{1, 2, 3})
}

func TestRunErrors(t *testing.T) {
	if err := run(options{input: "x.csv", format: "float"}, &bytes.Buffer{}); err == nil {
		t.Fatal("run() accepted an unknown format")
	}
	if err := run(options{input: filepath.Join(t.TempDir(), "none.csv"), format: "int16_t", sampleRate: 8000}, &bytes.Buffer{}); err == nil {
		t.Fatal("run() accepted a missing input")
	}
}
