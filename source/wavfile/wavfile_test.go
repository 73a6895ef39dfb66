package wavfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-micfront/internal/testutil"
	"github.com/cwbudde/algo-micfront/pcm"
	"github.com/cwbudde/algo-micfront/source"
)

// writeWAV builds a minimal RIFF/WAVE file around data.
func writeWAV(t *testing.T, format, channels, bits uint16, rate uint32, data []byte) string {
	t.Helper()

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+len(data)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, le, uint32(16))
	_ = binary.Write(&b, le, format)
	_ = binary.Write(&b, le, channels)
	_ = binary.Write(&b, le, rate)
	_ = binary.Write(&b, le, rate*uint32(channels)*uint32(bits/8))
	_ = binary.Write(&b, le, channels*bits/8)
	_ = binary.Write(&b, le, bits)
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(len(data)))
	b.Write(data)

	path := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func collect(t *testing.T, s *Source) ([]int16, int) {
	t.Helper()

	var got []int16
	calls := 0
	if err := s.Stream(context.Background(), func(b []int16) error {
		calls++
		got = append(got, b...)
		return nil
	}); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	return got, calls
}

func TestWAV16Stereo(t *testing.T) {
	want := testutil.Ramp(-5, 20)
	path := writeWAV(t, 1, 2, 16, 16000, pcm.Encode(nil, want))

	s, err := Open(path, WithBlockFrames(3))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if f := s.Format(); f != (source.Format{SampleRate: 16000, Channels: 2}) {
		t.Fatalf("Format() = %+v", f)
	}

	got, calls := collect(t, s)
	testutil.RequireInt16Equal(t, got, want)
	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
}

func TestWAV8AndFloat(t *testing.T) {
	path8 := writeWAV(t, 1, 1, 8, 8000, []byte{0, 128, 255})
	s, err := Open(path8)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, _ := collect(t, s)
	testutil.RequireInt16Equal(t, got, []int16{-32768, 0, 32512})

	var fb bytes.Buffer
	for _, v := range []float32{0, 0.5, -1, 2} {
		_ = binary.Write(&fb, binary.LittleEndian, math.Float32bits(v))
	}
	pathF := writeWAV(t, 3, 1, 32, 8000, fb.Bytes())
	s, err = Open(pathF)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, _ = collect(t, s)
	testutil.RequireInt16Equal(t, got, []int16{0, 16383, -32767, 32767})
}

func TestUnsupportedWAV(t *testing.T) {
	path := writeWAV(t, 1, 1, 24, 8000, make([]byte, 6))
	if _, err := Open(path); !errors.Is(err, errUnsupported) {
		t.Fatalf("Open() error = %v, want errUnsupported", err)
	}
}

func TestRawPCM(t *testing.T) {
	want := testutil.DeterministicInt16Noise(3, 301)
	path := filepath.Join(t.TempDir(), "in.pcm")
	if err := os.WriteFile(path, pcm.Encode(nil, want), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, WithBlockFrames(64))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, calls := collect(t, s)
	testutil.RequireInt16Equal(t, got, want)
	if calls != 5 {
		t.Fatalf("calls = %d, want 5", calls)
	}
}

func TestRawPCMDropsPartialFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pcm")
	if err := os.WriteFile(path, pcm.Encode(nil, []int16{1, 2, 3, 4, 5}), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, WithRawFormat(source.Format{SampleRate: 8000, Channels: 2}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, _ := collect(t, s)
	testutil.RequireInt16Equal(t, got, []int16{1, 2, 3, 4})
}

func TestMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("Open() of missing file succeeded")
	}
}
