package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
)

// ChannelID identifies a capture channel, e.g. one digital filter instance
// per microphone.
type ChannelID uint16

// State is the position of a channel in the capture cycle.
type State int32

const (
	// Idle means no completion has been seen yet.
	Idle State = iota
	// FirstHalfFilling means the capture source is writing the first half;
	// the second half, if any, has been handed off.
	FirstHalfFilling
	// SecondHalfFilling means the capture source is writing the second
	// half; the first half has been handed off.
	SecondHalfFilling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FirstHalfFilling:
		return "first_half_filling"
	case SecondHalfFilling:
		return "second_half_filling"
	default:
		return "unknown"
	}
}

// Channel binds a channel identity to its buffer and transport.
type Channel struct {
	ID        ChannelID
	Name      string
	Ring      *Ring
	Transport Transport
	// Disabled channels accept notifications and do nothing with them.
	Disabled bool
}

// Stats holds per-channel counters.
type Stats struct {
	Transmits uint64 // transfers started
	Completed uint64 // transfers finished without error
	Failures  uint64 // transfers that failed to start or finished with an error
	Overruns  uint64 // halves not sent because the previous transfer was pending
	Dropped   uint64 // notifications ignored on a disabled channel
}

type route struct {
	ch    Channel
	state atomic.Int32

	transmits atomic.Uint64
	completed atomic.Uint64
	failures  atomic.Uint64
	overruns  atomic.Uint64
	dropped   atomic.Uint64
}

func (rt *route) name() string {
	if rt.ch.Name != "" {
		return rt.ch.Name
	}
	return fmt.Sprintf("ch%d", rt.ch.ID)
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger used for overruns and transport failures.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Relay dispatches half/full completion notifications to per-channel
// transports. The channel table is fixed at construction, so notification
// methods are safe to call concurrently from different channels' callbacks.
// Notifications for a single channel must not overlap.
type Relay struct {
	routes map[ChannelID]*route
	ids    []ChannelID
	logger *slog.Logger
}

// NewRelay builds the dispatch table. Channel IDs must be unique, and every
// enabled channel needs a Ring and a Transport.
func NewRelay(channels []Channel, opts ...Option) (*Relay, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidConfig)
	}

	r := &Relay{
		routes: make(map[ChannelID]*route, len(channels)),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	for _, ch := range channels {
		if _, dup := r.routes[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate channel id %d", ErrInvalidConfig, ch.ID)
		}

		if !ch.Disabled {
			if ch.Ring == nil {
				return nil, fmt.Errorf("%w: channel %d has no ring", ErrInvalidConfig, ch.ID)
			}
			if ch.Transport == nil {
				return nil, fmt.Errorf("%w: channel %d has no transport", ErrInvalidConfig, ch.ID)
			}
		}

		r.routes[ch.ID] = &route{ch: ch}
		r.ids = append(r.ids, ch.ID)
	}

	slices.Sort(r.ids)

	return r, nil
}

// Channels returns the configured channel IDs in ascending order.
func (r *Relay) Channels() []ChannelID {
	return slices.Clone(r.ids)
}

// OnHalfComplete hands off the first half of the channel's buffer.
func (r *Relay) OnHalfComplete(id ChannelID) error {
	return r.handoff(id, First)
}

// OnFullComplete hands off the second half of the channel's buffer.
func (r *Relay) OnFullComplete(id ChannelID) error {
	return r.handoff(id, Second)
}

func (r *Relay) handoff(id ChannelID, h Half) error {
	rt, ok := r.routes[id]
	if !ok {
		return &ChannelError{Channel: id}
	}

	if rt.ch.Disabled {
		rt.dropped.Add(1)
		return nil
	}

	// The capture source has already moved on to the other half.
	if h == First {
		rt.state.Store(int32(SecondHalfFilling))
	} else {
		rt.state.Store(int32(FirstHalfFilling))
	}

	ready, err := rt.ch.Ring.Fill(h)
	if err != nil {
		return r.overrun(rt, h, err)
	}

	err = rt.ch.Transport.TransmitAsync(ready.Samples, func(err error) {
		ready.Release()

		if err != nil {
			rt.failures.Add(1)
			r.logger.Warn("capture transfer failed", "channel", rt.name(), "half", h.String(), "error", err)
			return
		}

		rt.completed.Add(1)
	})
	if err != nil {
		ready.Release()

		if errors.Is(err, ErrBusy) {
			return r.overrun(rt, h, err)
		}

		rt.failures.Add(1)
		r.logger.Warn("capture transfer not started", "channel", rt.name(), "half", h.String(), "error", err)

		return fmt.Errorf("capture: channel %d %s half: %w", id, h, err)
	}

	rt.transmits.Add(1)

	return nil
}

func (r *Relay) overrun(rt *route, h Half, err error) error {
	rt.overruns.Add(1)
	r.logger.Debug("capture overrun", "channel", rt.name(), "half", h.String(), "error", err)

	return &OverrunError{Channel: rt.ch.ID, Half: h, Err: err}
}

// State returns the capture state of a channel.
func (r *Relay) State(id ChannelID) (State, error) {
	rt, ok := r.routes[id]
	if !ok {
		return Idle, &ChannelError{Channel: id}
	}

	return State(rt.state.Load()), nil
}

// Stats returns a snapshot of a channel's counters.
func (r *Relay) Stats(id ChannelID) (Stats, error) {
	rt, ok := r.routes[id]
	if !ok {
		return Stats{}, &ChannelError{Channel: id}
	}

	return Stats{
		Transmits: rt.transmits.Load(),
		Completed: rt.completed.Load(),
		Failures:  rt.failures.Load(),
		Overruns:  rt.overruns.Load(),
		Dropped:   rt.dropped.Load(),
	}, nil
}

// LogStats writes one Info record per channel with its counters.
func (r *Relay) LogStats() {
	for _, id := range r.ids {
		rt := r.routes[id]
		st, _ := r.Stats(id)
		r.logger.Info("capture channel stats",
			"channel", rt.name(),
			"disabled", rt.ch.Disabled,
			"state", State(rt.state.Load()).String(),
			"transmits", st.Transmits,
			"completed", st.Completed,
			"failures", st.Failures,
			"overruns", st.Overruns,
			"dropped", st.Dropped,
		)
	}
}
