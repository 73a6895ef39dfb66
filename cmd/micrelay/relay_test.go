package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-micfront/internal/config"
	"github.com/cwbudde/algo-micfront/internal/testutil"
	"github.com/cwbudde/algo-micfront/pcm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Load()
	c.Realtime = false
	c.Frames = 8
	c.OutFile = filepath.Join(t.TempDir(), "out.pcm")
	return c
}

func TestRunRelaysFileToFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = filepath.Join(t.TempDir(), "in.pcm")
	if err := pcm.WriteFile(cfg.Source, testutil.DeterministicInt16Noise(5, 8000)); err != nil {
		t.Fatal(err)
	}

	st, err := run(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	// 8000 Hz, 1 channel, 8 frames: 32-sample halves, 250 of them.
	if st.Transmits != 8000/32 || st.Completed != st.Transmits || st.Overruns != 0 || st.Failures != 0 {
		t.Fatalf("stats = %+v, want %d clean transfers", st, 8000/32)
	}

	in, err := os.ReadFile(cfg.Source)
	if err != nil {
		t.Fatal(err)
	}
	out, err := os.ReadFile(cfg.OutFile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("output = %d bytes, differs from %d input bytes", len(out), len(in))
	}
}

func TestRunToneUntilDeadline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Realtime = true
	cfg.Filter = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	st, err := run(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if st.Transmits == 0 {
		t.Fatalf("nothing relayed: %+v", st)
	}
}

func TestRunNeedsOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutFile = ""

	_, err := run(context.Background(), cfg, quietLogger())
	if err == nil || !strings.Contains(err.Error(), "no output") {
		t.Fatalf("run() error = %v, want no output", err)
	}
}

func TestRunMissingRecording(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = filepath.Join(t.TempDir(), "missing.wav")

	if _, err := run(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("run() accepted a missing recording")
	}
}
