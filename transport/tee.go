package transport

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-micfront/capture"
)

// Tee returns a transport that hands each half to all ts. done runs once,
// after every started transfer has finished, with their errors joined.
// If no transport accepts the half, the joined start errors are returned
// and done is not called; when only some refuse, their errors are reported
// through done.
func Tee(ts ...capture.Transport) capture.Transport {
	return tee(ts)
}

type tee []capture.Transport

type teeTransfer struct {
	mu      sync.Mutex
	pending int
	errs    []error
	done    func(error)
}

func (tt *teeTransfer) finish(err error) {
	tt.mu.Lock()
	if err != nil {
		tt.errs = append(tt.errs, err)
	}
	tt.pending--
	last := tt.pending == 0
	errs := tt.errs
	tt.mu.Unlock()

	if last && tt.done != nil {
		tt.done(errors.Join(errs...))
	}
}

func (t tee) TransmitAsync(samples []int16, done func(error)) error {
	if len(t) == 0 {
		if done != nil {
			done(nil)
		}
		return nil
	}

	// One extra pending count holds done back until all starts are made.
	tt := &teeTransfer{pending: len(t) + 1, done: done}

	var refused []error
	for _, tr := range t {
		if err := tr.TransmitAsync(samples, tt.finish); err != nil {
			refused = append(refused, err)
		}
	}

	if len(refused) == len(t) {
		return errors.Join(refused...)
	}

	tt.mu.Lock()
	tt.pending -= len(refused)
	tt.errs = append(tt.errs, refused...)
	tt.mu.Unlock()

	tt.finish(nil)

	return nil
}
