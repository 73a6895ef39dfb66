package capture

import "fmt"

// BufferLength returns the capture buffer length in samples for a sample
// rate in Hz, a channel count and a number of 1 ms frames:
//
//	sampleRate/1000 * channels * frames
//
// The result must split into two halves of whole frames.
func BufferLength(sampleRate, channels, frames int) (int, error) {
	if sampleRate < 1000 {
		return 0, fmt.Errorf("%w: sample rate must be >= 1000 Hz: %d", ErrInvalidConfig, sampleRate)
	}
	if channels <= 0 {
		return 0, fmt.Errorf("%w: channels must be > 0: %d", ErrInvalidConfig, channels)
	}
	if frames <= 0 {
		return 0, fmt.Errorf("%w: frames must be > 0: %d", ErrInvalidConfig, frames)
	}

	n := sampleRate / 1000 * channels * frames
	if n%2 != 0 {
		return 0, fmt.Errorf("%w: buffer length must be even: %d", ErrInvalidConfig, n)
	}
	if (n/2)%channels != 0 {
		return 0, fmt.Errorf("%w: half of %d samples is not a whole number of %d-channel frames", ErrInvalidConfig, n, channels)
	}

	return n, nil
}
