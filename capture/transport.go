package capture

// Transport sends a completed half to its destination.
//
// TransmitAsync must not block. It must copy or fully consume samples
// before returning: the capture source overwrites the half on its next
// cycle. done is called exactly once when the transfer finishes, possibly
// from another goroutine and possibly before TransmitAsync returns. When
// TransmitAsync returns an error, done is not called. Transports that can
// only run one transfer at a time return an error matching ErrBusy.
type Transport interface {
	TransmitAsync(samples []int16, done func(error)) error
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(samples []int16, done func(error)) error

// TransmitAsync calls fn.
func (fn TransportFunc) TransmitAsync(samples []int16, done func(error)) error {
	return fn(samples, done)
}
