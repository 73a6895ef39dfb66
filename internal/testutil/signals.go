package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Int16Sine generates a deterministic sine wave truncated to int16.
// amplitude is in int16 units and must not exceed 32767.
func Int16Sine(freqHz, sampleRate, amplitude float64, length int) []int16 {
	f := DeterministicSine(freqHz, sampleRate, amplitude, length)
	out := make([]int16, length)
	for i, v := range f {
		out[i] = int16(v)
	}
	return out
}

// DeterministicInt16Noise generates full-range int16 noise with a fixed seed.
func DeterministicInt16Noise(seed int64, length int) []int16 {
	out := make([]int16, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = int16(rng.Intn(1<<16) - 1<<15)
	}
	return out
}

// Ramp returns length samples counting up from start, wrapping at the int16 limits.
func Ramp(start int16, length int) []int16 {
	out := make([]int16, length)
	v := start
	for i := range out {
		out[i] = v
		v++
	}
	return out
}

// Int16DC generates a constant-valued int16 signal.
func Int16DC(value int16, length int) []int16 {
	out := make([]int16, length)
	for i := range out {
		out[i] = value
	}
	return out
}
