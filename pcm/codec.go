package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// BytesPerSample is the encoded size of one int16 sample.
const BytesPerSample = 2

// ErrOddLength is returned when a byte stream ends in the middle of a sample.
var ErrOddLength = errors.New("pcm: odd byte count")

// Encode writes src as little-endian int16 into dst, growing it if needed,
// and returns the encoded bytes.
func Encode(dst []byte, src []int16) []byte {
	n := len(src) * BytesPerSample
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[i*BytesPerSample:], uint16(v))
	}
	return dst
}

// Decode reads little-endian int16 samples from src into dst, growing it if
// needed. src must hold a whole number of samples.
func Decode(dst []int16, src []byte) ([]int16, error) {
	if len(src)%BytesPerSample != 0 {
		return dst[:0], fmt.Errorf("%w: %d bytes", ErrOddLength, len(src))
	}
	n := len(src) / BytesPerSample
	if cap(dst) < n {
		dst = make([]int16, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*BytesPerSample:]))
	}
	return dst, nil
}

// Deinterleave splits frames of channels samples into per-channel slices,
// reusing dst where it has capacity.
func Deinterleave(dst [][]int16, src []int16, channels int) ([][]int16, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("pcm: channels must be > 0: %d", channels)
	}
	if len(src)%channels != 0 {
		return nil, fmt.Errorf("pcm: %d samples are not a whole number of %d-channel frames", len(src), channels)
	}

	frames := len(src) / channels
	if cap(dst) < channels {
		dst = make([][]int16, channels)
	}
	dst = dst[:channels]

	for ch := range dst {
		if cap(dst[ch]) < frames {
			dst[ch] = make([]int16, frames)
		}
		dst[ch] = dst[ch][:frames]
		for f := range frames {
			dst[ch][f] = src[f*channels+ch]
		}
	}
	return dst, nil
}

// Interleave merges equally long per-channel slices into frames.
func Interleave(dst []int16, channels [][]int16) ([]int16, error) {
	if len(channels) == 0 {
		return dst[:0], nil
	}
	frames := len(channels[0])
	for ch, s := range channels {
		if len(s) != frames {
			return nil, fmt.Errorf("pcm: channel %d has %d samples, want %d", ch, len(s), frames)
		}
	}

	n := frames * len(channels)
	if cap(dst) < n {
		dst = make([]int16, n)
	}
	dst = dst[:n]
	for ch, s := range channels {
		for f, v := range s {
			dst[f*len(channels)+ch] = v
		}
	}
	return dst, nil
}
