package capture

import (
	"errors"
	"fmt"
)

// Notifier receives half/full completion notifications. *Relay implements it.
type Notifier interface {
	OnHalfComplete(id ChannelID) error
	OnFullComplete(id ChannelID) error
}

// Feeder plays the role of the capture DMA for software sources: it copies
// samples into a channel's Ring in order and raises the half and full
// completion notifications at the buffer boundaries.
//
// Feeder is not safe for concurrent use.
type Feeder struct {
	id     ChannelID
	ring   *Ring
	notify Notifier
	pos    int
}

// NewFeeder returns a Feeder writing into ring and notifying n as channel id.
func NewFeeder(id ChannelID, ring *Ring, n Notifier) (*Feeder, error) {
	if ring == nil {
		return nil, fmt.Errorf("%w: feeder needs a ring", ErrInvalidConfig)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: feeder needs a notifier", ErrInvalidConfig)
	}

	return &Feeder{id: id, ring: ring, notify: n}, nil
}

// Write copies samples into the ring, wrapping as needed. Every boundary
// crossed raises one notification; all notification errors are joined and
// returned after the samples have been written.
func (f *Feeder) Write(samples []int16) error {
	var errs []error

	buf := f.ring.Buffer()
	half := f.ring.HalfLen()

	for len(samples) > 0 {
		end := half
		if f.pos >= half {
			end = len(buf)
		}

		n := copy(buf[f.pos:end], samples)
		samples = samples[n:]
		f.pos += n

		var err error

		switch f.pos {
		case half:
			err = f.notify.OnHalfComplete(f.id)
		case len(buf):
			f.pos = 0
			err = f.notify.OnFullComplete(f.id)
		}

		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Pending returns the number of samples written since the last boundary.
func (f *Feeder) Pending() int {
	return f.pos % f.ring.HalfLen()
}

// Filling returns the half the next sample lands in and how many samples
// fit before its boundary.
func (f *Feeder) Filling() (Half, int) {
	half := f.ring.HalfLen()
	if f.pos < half {
		return First, half - f.pos
	}
	return Second, len(f.ring.Buffer()) - f.pos
}

// Reset rewinds the write position to the start of the first half.
func (f *Feeder) Reset() {
	f.pos = 0
}
