package capture

import (
	"fmt"
	"sync/atomic"
)

// Half identifies one half of a double buffer.
type Half uint8

const (
	// First is the half at offset 0.
	First Half = iota
	// Second is the half at offset HalfLen.
	Second
)

func (h Half) String() string {
	switch h {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return fmt.Sprintf("half(%d)", uint8(h))
	}
}

// Other returns the opposite half.
func (h Half) Other() Half { return h ^ 1 }

func (h Half) valid() bool { return h == First || h == Second }

const (
	slotFree int32 = iota
	slotInFlight
)

// Ring is a two-slot capture buffer. The capture source writes into Buffer
// or Slot; Fill marks a half as handed off until Release is called.
type Ring struct {
	buf   []int16
	half  int
	slots [2]atomic.Int32
}

// NewRing allocates a ring of length samples. length must be positive and
// even.
func NewRing(length int) (*Ring, error) {
	if length <= 0 || length%2 != 0 {
		return nil, fmt.Errorf("%w: ring length must be positive and even: %d", ErrInvalidConfig, length)
	}

	return &Ring{buf: make([]int16, length), half: length / 2}, nil
}

// Len returns the total number of samples.
func (r *Ring) Len() int { return len(r.buf) }

// HalfLen returns the number of samples per half.
func (r *Ring) HalfLen() int { return r.half }

// Buffer returns the whole backing buffer for the capture writer.
func (r *Ring) Buffer() []int16 { return r.buf }

// Offset returns the sample offset of h.
func (r *Ring) Offset(h Half) int { return int(h) * r.half }

// Slot returns the samples of half h. The returned slice cannot grow into
// the other half.
func (r *Ring) Slot(h Half) []int16 {
	off := r.Offset(h)
	return r.buf[off : off+r.half : off+r.half]
}

// Ready is a filled half that has been claimed for transmission.
type Ready struct {
	Half    Half
	Offset  int
	Samples []int16

	ring *Ring
}

// Release returns the half to the ring.
func (s Ready) Release() {
	if s.ring != nil {
		s.ring.Release(s.Half)
	}
}

// Fill claims half h for transmission. It returns an error matching ErrBusy
// when h has not been released since the previous Fill.
func (r *Ring) Fill(h Half) (Ready, error) {
	if !h.valid() {
		return Ready{}, fmt.Errorf("%w: invalid half %d", ErrInvalidConfig, h)
	}

	if !r.slots[h].CompareAndSwap(slotFree, slotInFlight) {
		return Ready{}, fmt.Errorf("%w: %s half still in flight", ErrBusy, h)
	}

	return Ready{
		Half:    h,
		Offset:  r.Offset(h),
		Samples: r.Slot(h),
		ring:    r,
	}, nil
}

// Release marks half h as free. Releasing a free half is a no-op.
func (r *Ring) Release(h Half) {
	if h.valid() {
		r.slots[h].Store(slotFree)
	}
}

// InFlight reports whether half h is claimed.
func (r *Ring) InFlight(h Half) bool {
	return h.valid() && r.slots[h].Load() == slotInFlight
}
