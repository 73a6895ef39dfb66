package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-micfront/dsp/core"
)

func TestSineLength(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(48000))
	s, err := g.Sine(1000, 1, 64)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}
	if len(s) != 64 {
		t.Fatalf("len = %d, want 64", len(s))
	}
}

func TestSineRejectsEmpty(t *testing.T) {
	g := NewGenerator()
	if _, err := g.Sine(440, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestDefaultRateMatchesCapture(t *testing.T) {
	g := NewGenerator()
	if g.Config().SampleRate != 8000 {
		t.Fatalf("SampleRate = %v, want 8000", g.Config().SampleRate)
	}
	if g.Samples(10) != 80000 {
		t.Fatalf("Samples(10) = %d, want 80000", g.Samples(10))
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	g1 := NewGeneratorWithOptions(nil, WithSeed(42))
	g2 := NewGeneratorWithOptions(nil, WithSeed(42))

	n1, err := g1.WhiteNoise(1, 16)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	n2, err := g2.WhiteNoise(1, 16)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}

	for i := range n1 {
		if n1[i] != n2[i] {
			t.Fatalf("noise mismatch at %d: %v != %v", i, n1[i], n2[i])
		}
		if math.Abs(n1[i]) > 1 {
			t.Fatalf("noise[%d] = %v out of range", i, n1[i])
		}
	}
}

func TestSetSeed(t *testing.T) {
	g := NewGenerator()
	g.SetSeed(99)
	if g.Seed() != 99 {
		t.Fatalf("Seed()=%d, want 99", g.Seed())
	}

	a, err := g.GaussianNoise(1, 8)
	if err != nil {
		t.Fatalf("GaussianNoise() error = %v", err)
	}
	g.SetSeed(100)
	b, err := g.GaussianNoise(1, 8)
	if err != nil {
		t.Fatalf("GaussianNoise() error = %v", err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different noise")
	}
}

func TestGaussianNoiseSpread(t *testing.T) {
	g := NewGenerator()
	x, err := g.GaussianNoise(0.5, 20000)
	if err != nil {
		t.Fatalf("GaussianNoise() error = %v", err)
	}

	var sum, sq float64
	for _, v := range x {
		sum += v
		sq += v * v
	}
	mean := sum / float64(len(x))
	std := math.Sqrt(sq/float64(len(x)) - mean*mean)

	if math.Abs(mean) > 0.02 || math.Abs(std-0.5) > 0.02 {
		t.Fatalf("mean=%v std=%v, want ~0 and ~0.5", mean, std)
	}
}

func TestTransient(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))
	dst := make([]float64, 100)

	if err := g.Transient(dst, 0.01, 0.02, 0.005, 0.5); err != nil {
		t.Fatalf("Transient() error = %v", err)
	}

	if dst[9] != 0 || dst[30] != 0 {
		t.Fatalf("burst leaked outside [10,30): %v %v", dst[9], dst[30])
	}
	if dst[10] != 0.5 {
		t.Fatalf("dst[10] = %v, want 0.5", dst[10])
	}
	if want := 0.5 * math.Exp(-1); math.Abs(dst[15]-want) > 1e-12 {
		t.Fatalf("dst[15] = %v, want %v", dst[15], want)
	}

	// Past the end: ignored.
	if err := g.Transient(dst, 5, 0.1, 0.05, 1); err != nil {
		t.Fatalf("Transient() past end error = %v", err)
	}
	if err := g.Transient(dst, 0, 0.1, 0, 1); err == nil {
		t.Fatal("expected error for zero decay")
	}
}

func TestTestTone(t *testing.T) {
	g := NewGeneratorWithOptions(nil, WithSeed(7))

	x, err := g.TestTone(10)
	if err != nil {
		t.Fatalf("TestTone() error = %v", err)
	}
	if len(x) != 80000 {
		t.Fatalf("len = %d, want 80000", len(x))
	}

	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-TestTonePeak) > 1e-12 {
		t.Fatalf("peak = %v, want %v", peak, TestTonePeak)
	}

	// The burst at 2.0 s dominates its neighbourhood.
	if x[16000] < x[15990] {
		t.Fatalf("expected burst onset at 2.0 s: %v < %v", x[16000], x[15990])
	}

	y, _ := NewGeneratorWithOptions(nil, WithSeed(7)).TestTone(10)
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("test tone not deterministic at %d", i)
		}
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{-0.5, 1.0, -0.25}, 0.5)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out[1] != 0.5 {
		t.Fatalf("peak = %v, want 0.5", out[1])
	}

	silent, err := Normalize([]float64{0, 0}, 1)
	if err != nil || silent[0] != 0 {
		t.Fatalf("Normalize(silence) = %v, %v", silent, err)
	}

	if _, err := Normalize(nil, 1); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestRemoveDC(t *testing.T) {
	out, err := RemoveDC([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("RemoveDC() error = %v", err)
	}
	sum := 0.0
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		t.Fatalf("sum=%v, want near 0", sum)
	}
}

func TestQuantize(t *testing.T) {
	got := Quantize([]float64{0, 1, -1, 2, -2, 0.5, math.NaN()})
	want := []int16{0, 32767, -32767, 32767, -32768, 16383, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Quantize[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
