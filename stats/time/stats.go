package time

import "math"

// FullScale is the amplitude that maps to 0 dBFS.
const FullScale = 32768.0

// Stats holds time-domain level statistics of int16 PCM. dB fields are
// relative to FullScale and are -Inf for zero values.
//
//nolint:revive
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMS_dBFS      float64
	StdDev        float64
	Variance      float64
	Max           int16
	MaxPos        int
	Min           int16
	MinPos        int
	Peak          float64 // max(|max|, |min|)
	Peak_dBFS     float64
	CrestFactor   float64 // peak / RMS (linear)
	CrestFactorDB float64
	ZeroCrossings int
	// Clipped counts samples sitting at either int16 limit.
	Clipped int
	// EffectiveBits is log2(peak+1), the number of magnitude bits in use.
	EffectiveBits float64
}

func emptyStats() Stats {
	return Stats{
		RMS_dBFS:      math.Inf(-1),
		Peak_dBFS:     math.Inf(-1),
		CrestFactorDB: math.Inf(-1),
	}
}

// Calculate computes all statistics in a single pass.
func Calculate(samples []int16) Stats {
	var s StreamingStats
	s.Update(samples)
	return s.Result()
}

// RMS returns the root-mean-square of samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range samples {
		v := float64(x)
		sumSq += v * v
	}

	return mathSqrt(sumSq / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []int16) float64 {
	peak := 0.0
	for _, x := range samples {
		peak = math.Max(peak, math.Abs(float64(x)))
	}
	return peak
}

// Clipped counts samples at -32768 or 32767.
func Clipped(samples []int16) int {
	n := 0
	for _, x := range samples {
		if x == math.MaxInt16 || x == math.MinInt16 {
			n++
		}
	}
	return n
}

// StreamingStats accumulates statistics across blocks. Feeding the same
// samples in any block split yields the same Result as [Calculate].
type StreamingStats struct {
	n             int
	mean          float64
	m2            float64
	sumSq         float64
	maxVal        int16
	maxPos        int
	minVal        int16
	minPos        int
	zeroCrossings int
	clipped       int
	last          int16
}

// NewStreamingStats creates a new StreamingStats accumulator.
func NewStreamingStats() *StreamingStats {
	return &StreamingStats{}
}

// Update adds a block of samples to the running statistics.
func (s *StreamingStats) Update(samples []int16) {
	for _, x := range samples {
		v := float64(x)

		if s.n == 0 {
			s.maxVal, s.minVal = x, x
		} else {
			if x > s.maxVal {
				s.maxVal = x
				s.maxPos = s.n
			}
			if x < s.minVal {
				s.minVal = x
				s.minPos = s.n
			}
			if (s.last < 0 && x > 0) || (s.last > 0 && x < 0) {
				s.zeroCrossings++
			}
		}

		if x == math.MaxInt16 || x == math.MinInt16 {
			s.clipped++
		}

		// Welford.
		s.n++
		delta := v - s.mean
		s.mean += delta / float64(s.n)
		s.m2 += delta * (v - s.mean)

		s.sumSq += v * v
		s.last = x
	}
}

// Len returns the number of samples seen.
func (s *StreamingStats) Len() int { return s.n }

// Result computes the final statistics from accumulated data.
func (s *StreamingStats) Result() Stats {
	if s.n == 0 {
		return emptyStats()
	}

	nf := float64(s.n)
	rms := mathSqrt(s.sumSq / nf)
	peak := math.Max(math.Abs(float64(s.maxVal)), math.Abs(float64(s.minVal)))
	variance := s.m2 / nf

	var crest, crestDB float64
	if rms > 0 {
		crest = peak / rms
		crestDB = ratioToDB(crest)
	}

	return Stats{
		Length:        s.n,
		DC:            s.mean,
		RMS:           rms,
		RMS_dBFS:      ratioToDB(rms / FullScale),
		StdDev:        mathSqrt(variance),
		Variance:      variance,
		Max:           s.maxVal,
		MaxPos:        s.maxPos,
		Min:           s.minVal,
		MinPos:        s.minPos,
		Peak:          peak,
		Peak_dBFS:     ratioToDB(peak / FullScale),
		CrestFactor:   crest,
		CrestFactorDB: crestDB,
		ZeroCrossings: s.zeroCrossings,
		Clipped:       s.clipped,
		EffectiveBits: math.Log2(peak + 1),
	}
}

// Reset clears all accumulated data, allowing the StreamingStats to be reused.
func (s *StreamingStats) Reset() {
	*s = StreamingStats{}
}

// ratioToDB converts a linear amplitude ratio to decibels, -Inf for zero.
func ratioToDB(value float64) float64 {
	if value <= 0 {
		return math.Inf(-1)
	}
	return 20 * mathLog10(value)
}
