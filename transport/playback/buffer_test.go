package playback

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/algo-micfront/internal/testutil"
	"github.com/cwbudde/algo-micfront/pcm"
)

func readSamples(t *testing.T, b *Buffer, n int) []int16 {
	t.Helper()

	p := make([]byte, 2*n)
	got, err := b.Read(p)
	if err != nil || got != len(p) {
		t.Fatalf("Read() = %d, %v", got, err)
	}
	out, err := pcm.Decode(nil, p)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out
}

func TestBufferFIFO(t *testing.T) {
	b := NewBuffer(8)
	b.Write([]int16{1, 2, 3})
	b.Write([]int16{4, 5})

	testutil.RequireInt16Equal(t, readSamples(t, b, 4), []int16{1, 2, 3, 4})
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}

	b.Write([]int16{6, 7, 8, 9, 10, 11})
	testutil.RequireInt16Equal(t, readSamples(t, b, 7), []int16{5, 6, 7, 8, 9, 10, 11})
}

func TestBufferDropsOldest(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]int16{1, 2, 3})
	b.Write([]int16{4, 5, 6})

	testutil.RequireInt16Equal(t, readSamples(t, b, 4), []int16{3, 4, 5, 6})

	b.Write(testutil.Ramp(10, 6))
	testutil.RequireInt16Equal(t, readSamples(t, b, 4), []int16{12, 13, 14, 15})

	if dropped, _ := b.Counters(); dropped != 4 {
		t.Fatalf("dropped = %d, want 4", dropped)
	}
}

func TestBufferUnderrunIsSilence(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]int16{-7})

	p := bytes.Repeat([]byte{0xff}, 7)
	n, err := b.Read(p)
	if err != nil || n != 6 {
		t.Fatalf("Read() = %d, %v, want 6, nil", n, err)
	}
	got, _ := pcm.Decode(nil, p[:n])
	testutil.RequireInt16Equal(t, got, []int16{-7, 0, 0})

	if _, underruns := b.Counters(); underruns != 1 {
		t.Fatalf("underruns = %d, want 1", underruns)
	}
}

func TestBufferReadSizes(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantN   int
		wantErr error
	}{
		{"empty", 0, 0, nil},
		{"one byte", 1, 0, io.ErrShortBuffer},
		{"one sample", 2, 2, nil},
		{"trailing byte", 5, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(4)
			b.Write([]int16{1, 2, 3})

			n, err := b.Read(make([]byte, tt.size))
			if n != tt.wantN || !errors.Is(err, tt.wantErr) {
				t.Fatalf("Read(%d bytes) = %d, %v, want %d, %v", tt.size, n, err, tt.wantN, tt.wantErr)
			}
			if want := 3 - tt.wantN/2; b.Len() != want {
				t.Fatalf("Len() = %d, want %d", b.Len(), want)
			}
		})
	}
}

func TestBufferReadAcrossWrap(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]int16{1, 2, 3})
	readSamples(t, b, 2)
	b.Write([]int16{4, 5, 6})

	testutil.RequireInt16Equal(t, readSamples(t, b, 4), []int16{3, 4, 5, 6})
}
