package playback

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cwbudde/algo-micfront/capture"
	"github.com/cwbudde/algo-micfront/internal/testutil"
)

type fakePlayer struct {
	playing bool
	closes  int
}

func (p *fakePlayer) Play() { p.playing = true }

func (p *fakePlayer) Close() error {
	p.playing = false
	p.closes++
	return nil
}

func TestMonitorTransmit(t *testing.T) {
	player := &fakePlayer{}
	buf := NewBuffer(16)
	m := NewWithPlayer(buf, player, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	var _ capture.Transport = m

	if !player.playing {
		t.Fatal("player not started")
	}

	var done int
	for _, half := range [][]int16{{1, 2}, {3, 4}} {
		if err := m.TransmitAsync(half, func(err error) {
			if err == nil {
				done++
			}
		}); err != nil {
			t.Fatalf("TransmitAsync() error = %v", err)
		}
	}
	if done != 2 {
		t.Fatalf("done calls = %d, want 2", done)
	}

	testutil.RequireInt16Equal(t, readSamples(t, m.Buffer(), 4), []int16{1, 2, 3, 4})

	_ = m.Close()
	_ = m.Close()
	if player.closes != 1 {
		t.Fatalf("player closed %d times, want 1", player.closes)
	}
}

func TestBufferSamples(t *testing.T) {
	tests := []struct {
		rate, channels int
		latency        time.Duration
		want           int
	}{
		{8000, 1, 200 * time.Millisecond, 1600},
		{48000, 2, 100 * time.Millisecond, 9600},
		{8000, 4, time.Microsecond, 4},
	}
	for _, tt := range tests {
		if got := bufferSamples(tt.rate, tt.channels, tt.latency); got != tt.want {
			t.Errorf("bufferSamples(%d, %d, %v) = %d, want %d", tt.rate, tt.channels, tt.latency, got, tt.want)
		}
	}
}
