package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-micfront/capture"
	"github.com/cwbudde/algo-micfront/pcm"
)

// DefaultQueueDepth is the number of halves an Async accepts before it
// reports busy.
const DefaultQueueDepth = 8

var (
	// ErrBusy is returned while the transfer queue is full. It matches
	// capture.ErrBusy so a Relay reports it as an overrun.
	ErrBusy = fmt.Errorf("transport: %w", capture.ErrBusy)
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("transport: closed")
)

// AsyncOption configures an Async.
type AsyncOption func(*Async)

// WithQueueDepth sets how many halves may be queued or running at once.
// A depth of 1 behaves like a single DMA channel.
func WithQueueDepth(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.depth = n
		}
	}
}

type transfer struct {
	buf  []byte
	done func(error)
}

// Async writes each half as little-endian PCM to an io.Writer from a
// background goroutine, in submission order. Halves are encoded before
// TransmitAsync returns; up to the queue depth may be pending.
type Async struct {
	w     io.Writer
	depth int

	mu      sync.Mutex
	queue   []transfer
	pending int
	running bool
	closed  bool
	free    [][]byte
	wg      sync.WaitGroup

	transfers atomic.Uint64
	bytes     atomic.Uint64
	failures  atomic.Uint64
}

// NewAsync returns an Async writing to w.
func NewAsync(w io.Writer, opts ...AsyncOption) *Async {
	a := &Async{w: w, depth: DefaultQueueDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// TransmitAsync encodes samples and queues them for writing. done, if
// non-nil, receives the write error.
func (a *Async) TransmitAsync(samples []int16, done func(error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.pending >= a.depth {
		return ErrBusy
	}

	var buf []byte
	if n := len(a.free); n > 0 {
		buf, a.free = a.free[n-1], a.free[:n-1]
	}
	a.queue = append(a.queue, transfer{buf: pcm.Encode(buf, samples), done: done})
	a.pending++

	if !a.running {
		a.running = true
		a.wg.Add(1)
		go a.run()
	}

	return nil
}

// run writes queued transfers until the queue is empty.
func (a *Async) run() {
	defer a.wg.Done()

	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			a.running = false
			a.mu.Unlock()
			return
		}
		t := a.queue[0]
		a.queue[0] = transfer{}
		a.queue = a.queue[1:]
		a.mu.Unlock()

		n, err := a.w.Write(t.buf)
		if err == nil && n < len(t.buf) {
			err = io.ErrShortWrite
		}

		a.transfers.Add(1)
		a.bytes.Add(uint64(n))
		if err != nil {
			a.failures.Add(1)
		}

		a.mu.Lock()
		a.pending--
		if len(a.free) < a.depth {
			a.free = append(a.free, t.buf[:0])
		}
		a.mu.Unlock()

		if t.done != nil {
			t.done(err)
		}
	}
}

// Busy reports whether the queue is full.
func (a *Async) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending >= a.depth
}

// Pending returns the number of queued or running transfers.
func (a *Async) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Counters returns the number of finished transfers, bytes written and
// failed transfers.
func (a *Async) Counters() (transfers, bytes, failures uint64) {
	return a.transfers.Load(), a.bytes.Load(), a.failures.Load()
}

// Close rejects further transfers and waits for the queued ones to finish.
// It does not close the underlying writer.
func (a *Async) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}
