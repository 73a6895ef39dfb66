package capture

import (
	"sync"
)

// recordingTransport stores a copy of every transfer. With hold set, done
// callbacks are kept until complete is called.
type recordingTransport struct {
	mu      sync.Mutex
	hold    bool
	busy    bool
	fail    error
	sent    [][]int16
	pending []func(error)
}

func (rt *recordingTransport) TransmitAsync(samples []int16, done func(error)) error {
	rt.mu.Lock()

	if rt.fail != nil {
		err := rt.fail
		rt.mu.Unlock()
		return err
	}
	if rt.busy && len(rt.pending) > 0 {
		rt.mu.Unlock()
		return ErrBusy
	}

	rt.sent = append(rt.sent, append([]int16(nil), samples...))

	if rt.hold {
		rt.pending = append(rt.pending, done)
		rt.mu.Unlock()
		return nil
	}
	rt.mu.Unlock()

	done(nil)

	return nil
}

func (rt *recordingTransport) complete(err error) {
	rt.mu.Lock()
	pending := rt.pending
	rt.pending = nil
	rt.mu.Unlock()

	for _, done := range pending {
		done(err)
	}
}

func (rt *recordingTransport) transfers() [][]int16 {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return append([][]int16(nil), rt.sent...)
}
