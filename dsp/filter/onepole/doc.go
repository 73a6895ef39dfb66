// Package onepole implements a single-pole IIR low-pass filter for int16
// PCM streams.
//
// The filter is an exponential moving average:
//
//	y[n] = alpha*x[n] + (1-alpha)*y[n-1]
//	alpha = 1 / (1 + 2*pi*fc/fs)
//
// Arithmetic runs in float64; every output is clamped to the configured
// bounds (the full int16 range by default) and truncated toward zero before
// it is stored as the new state. State carries over between ProcessSample,
// ProcessBlock and ProcessInPlace calls; call Reset or Init to start an
// independent block.
//
// A Lowpass is not safe for concurrent use. Keep one instance per channel.
package onepole
