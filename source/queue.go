package source

import (
	"context"
	"sync/atomic"

	"github.com/cwbudde/algo-micfront/dsp/buffer"
)

// Queue hands blocks from a device callback to a Stream loop. Push never
// blocks: when the consumer falls behind, new blocks are dropped.
type Queue struct {
	ch      chan *buffer.Block
	pool    *buffer.Pool
	dropped atomic.Uint64
}

// NewQueue returns a Queue holding up to depth blocks.
func NewQueue(depth int) *Queue {
	return &Queue{
		ch:   make(chan *buffer.Block, max(depth, 1)),
		pool: buffer.NewPool(),
	}
}

// Push copies samples into the queue and reports whether they were kept.
func (q *Queue) Push(samples []int16) bool {
	block := q.pool.Copy(samples)
	select {
	case q.ch <- block:
		return true
	default:
		q.pool.Put(block)
		q.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of blocks discarded by Push.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Drain delivers queued blocks to sink until ctx is done, errc yields a
// device error, or the sink stops. Blocks go back to the pool once the
// sink returns.
func (q *Queue) Drain(ctx context.Context, errc <-chan error, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case block := <-q.ch:
			stop, err := Deliver(sink, block.Samples())
			q.pool.Put(block)
			if stop {
				return err
			}
		}
	}
}
