package onepole

import (
	"math"
	"math/cmplx"
)

// Response computes the complex frequency response
//
//	H(e^jw) = alpha / (1 - (1-alpha) e^-jw)
//
// of the linear part of the filter. Clamping and truncation are ignored.
// For filters built with NewWithAlpha freqHz is interpreted relative to a
// sample rate of 1.
func (f *Lowpass) Response(freqHz float64) complex128 {
	fs := f.sampleRate
	if fs <= 0 {
		fs = 1
	}

	w := 2 * math.Pi * freqHz / fs
	den := complex(1, 0) - complex(1-f.alpha, 0)*cmplx.Exp(complex(0, -w))

	return complex(f.alpha, 0) / den
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (f *Lowpass) MagnitudeDB(freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(f.Response(freqHz)))
}

// Corner3dB returns the frequency in Hz at which the magnitude response is
// 3 dB below DC, or the Nyquist frequency when the response never drops
// that far. For filters built with NewWithAlpha the result is normalised to
// a sample rate of 1.
func (f *Lowpass) Corner3dB() float64 {
	fs := f.sampleRate
	if fs <= 0 {
		fs = 1
	}

	// |H|^2 = a^2 / (1 + b^2 - 2b cos w) = a^2 / 2  =>  cos w = (1 + b^2 - 2a^2) / 2b
	a := f.alpha
	b := 1 - a
	if b == 0 {
		return fs / 2
	}

	c := (1 + b*b - 2*a*a) / (2 * b)
	if c <= -1 {
		return fs / 2
	}
	if c >= 1 {
		return 0
	}

	return math.Acos(c) * fs / (2 * math.Pi)
}

// ImpulseResponse returns n samples of the response to a full-scale
// positive impulse (32767 followed by zeros). Filter state is saved and
// restored, so this method does not disturb a running stream.
func (f *Lowpass) ImpulseResponse(n int) []int16 {
	if n <= 0 {
		return nil
	}

	saved := f.State()
	f.Reset()

	ir := make([]int16, n)
	ir[0] = f.ProcessSample(math.MaxInt16)
	for i := 1; i < n; i++ {
		ir[i] = f.ProcessSample(0)
	}

	f.SetState(saved)

	return ir
}
