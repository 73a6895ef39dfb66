package playback

import (
	"io"
	"sync"

	"github.com/cwbudde/algo-micfront/pcm"
)

// Buffer is a bounded int16 FIFO between the relay and the audio device.
// Writes never block: when full, the oldest samples are discarded. Reads
// never block either: missing samples are replaced by silence.
type Buffer struct {
	mu        sync.Mutex
	data      []int16
	head      int
	size      int
	dropped   uint64
	underruns uint64
}

// NewBuffer returns a Buffer holding up to capacity samples.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{data: make([]int16, capacity)}
}

// Cap returns the capacity in samples.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Write appends samples, overwriting the oldest ones on overflow.
func (b *Buffer) Write(samples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.data)
	if len(samples) > n {
		b.dropped += uint64(len(samples) - n)
		samples = samples[len(samples)-n:]
	}
	if over := b.size + len(samples) - n; over > 0 {
		b.head = (b.head + over) % n
		b.size -= over
		b.dropped += uint64(over)
	}

	tail := (b.head + b.size) % n
	for _, s := range samples {
		b.data[tail] = s
		tail++
		if tail == n {
			tail = 0
		}
	}
	b.size += len(samples)
}

// Read fills p with little-endian int16 samples and always returns len(p)
// rounded down to whole samples. A p shorter than one sample is reported
// as io.ErrShortBuffer.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) > 0 && len(p) < pcm.BytesPerSample {
		return 0, io.ErrShortBuffer
	}
	want := len(p) / pcm.BytesPerSample

	b.mu.Lock()
	defer b.mu.Unlock()

	avail := min(want, b.size)
	first := min(avail, len(b.data)-b.head)
	pcm.Encode(p[:0], b.data[b.head:b.head+first])
	pcm.Encode(p[2*first:2*first], b.data[:avail-first])
	b.head = (b.head + avail) % len(b.data)
	b.size -= avail

	if avail < want {
		clear(p[2*avail : 2*want])
		b.underruns++
	}

	return 2 * want, nil
}

// Counters returns samples dropped on overflow and reads that were padded
// with silence.
func (b *Buffer) Counters() (dropped, underruns uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped, b.underruns
}
