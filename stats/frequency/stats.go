package frequency

import (
	"math"
)

// Stats holds frequency-domain statistics computed from a one-sided
// magnitude spectrum.
//
//nolint:revive
type Stats struct {
	BinCount   int
	DC         float64 // bin 0 magnitude
	Sum        float64 // sum of magnitudes
	Average    float64
	Average_dB float64
	Energy     float64 // sum of squared magnitudes
	Power      float64
	// Spectral shape descriptors
	Centroid float64 // spectral centroid (Hz)
	Spread   float64 // spectral spread (Hz)
	Flatness float64 // spectral flatness (Wiener entropy), 0..1
	Rolloff  float64 // frequency below which 85% energy (Hz)
}

// RolloffFraction is the energy fraction used for Stats.Rolloff.
const RolloffFraction = 0.85

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// binFreq returns the frequency of bin i when binCount = fftSize/2 + 1.
func binFreq(i int, sampleRate float64, binCount int) float64 {
	return float64(i) * sampleRate / float64(2*(binCount-1))
}

// Calculate computes all statistics from a magnitude spectrum (linear
// scale, NOT dB) covering bins 0 (DC) to Nyquist.
func Calculate(magnitude []float64, sampleRate float64) Stats {
	n := len(magnitude)
	if n == 0 {
		return Stats{Average_dB: math.Inf(-1)}
	}

	s := Stats{BinCount: n, DC: magnitude[0]}
	for _, v := range magnitude {
		s.Sum += v
		s.Energy += v * v
	}
	s.Average = s.Sum / float64(n)
	s.Average_dB = toDB(s.Average)
	s.Power = s.Energy / float64(n)

	if n < 2 {
		return s
	}

	s.Centroid = centroid(magnitude, sampleRate, s.Sum)
	s.Spread = spread(magnitude, sampleRate, s.Centroid, s.Sum)
	s.Flatness = Flatness(magnitude)
	s.Rolloff = rolloff(magnitude, sampleRate, RolloffFraction, s.Energy)

	return s
}

func centroid(magnitude []float64, sampleRate float64, sumMag float64) float64 {
	if sumMag == 0 {
		return 0
	}
	n := len(magnitude)
	weighted := 0.0
	for i, v := range magnitude {
		weighted += binFreq(i, sampleRate, n) * v
	}
	return weighted / sumMag
}

func spread(magnitude []float64, sampleRate float64, cent float64, sumMag float64) float64 {
	if sumMag == 0 {
		return 0
	}
	n := len(magnitude)
	weighted := 0.0
	for i, v := range magnitude {
		d := binFreq(i, sampleRate, n) - cent
		weighted += d * d * v
	}
	return math.Sqrt(weighted / sumMag)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1:
// the geometric over the arithmetic mean of bins 1..N-1. Any zero bin gives 0.
func Flatness(magnitude []float64) float64 {
	n := len(magnitude)
	if n < 2 {
		return 0
	}

	sumLin, sumLog := 0.0, 0.0
	for _, v := range magnitude[1:] {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	bins := float64(n - 1)
	return math.Exp(sumLog/bins) / (sumLin / bins)
}

// Rolloff returns the frequency below which the given fraction (0..1) of
// spectral energy lies.
func Rolloff(magnitude []float64, sampleRate float64, fraction float64) float64 {
	energy := 0.0
	for _, v := range magnitude {
		energy += v * v
	}
	return rolloff(magnitude, sampleRate, fraction, energy)
}

func rolloff(magnitude []float64, sampleRate float64, fraction float64, total float64) float64 {
	n := len(magnitude)
	if n < 2 || total == 0 {
		return 0
	}
	threshold := fraction * total
	cum := 0.0
	for i, v := range magnitude {
		cum += v * v
		if cum >= threshold {
			return binFreq(i, sampleRate, n)
		}
	}
	return binFreq(n-1, sampleRate, n)
}
