package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by construction errors.
	ErrInvalidConfig = errors.New("capture: invalid configuration")
	// ErrBusy reports that a ring half or a transport is still occupied by
	// a previous transfer. Transports return errors matching ErrBusy when
	// they cannot start another transfer.
	ErrBusy = errors.New("capture: busy")
	// ErrOverrun is matched by *OverrunError.
	ErrOverrun = errors.New("capture: overrun")
	// ErrUnknownChannel is matched by *ChannelError.
	ErrUnknownChannel = errors.New("capture: unknown channel")
)

// OverrunError reports a completed half that could not be handed off
// because the previous transfer had not finished.
type OverrunError struct {
	Channel ChannelID
	Half    Half
	Err     error
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("capture: overrun on channel %d (%s half): %v", e.Channel, e.Half, e.Err)
}

// Is reports whether target is ErrOverrun.
func (e *OverrunError) Is(target error) bool { return target == ErrOverrun }

// Unwrap returns the underlying busy error.
func (e *OverrunError) Unwrap() error { return e.Err }

// ChannelError reports a notification for a channel the Relay was not
// configured with.
type ChannelError struct {
	Channel ChannelID
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("capture: unknown channel %d", e.Channel)
}

// Is reports whether target is ErrUnknownChannel.
func (e *ChannelError) Is(target error) bool { return target == ErrUnknownChannel }
