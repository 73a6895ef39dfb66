package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampInt16(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		min   int16
		max   int16
		want  int16
	}{
		{name: "truncates positive", value: 16383.5, min: MinInt16, max: MaxInt16, want: 16383},
		{name: "truncates negative", value: -16383.5, min: MinInt16, max: MaxInt16, want: -16383},
		{name: "upper", value: 40000, min: MinInt16, max: MaxInt16, want: MaxInt16},
		{name: "lower", value: -40000, min: MinInt16, max: MaxInt16, want: MinInt16},
		{name: "narrow", value: 900, min: -100, max: 100, want: 100},
		{name: "nan", value: math.NaN(), min: MinInt16, max: MaxInt16, want: 0},
		{name: "inf", value: math.Inf(1), min: MinInt16, max: MaxInt16, want: MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampInt16(tt.value, tt.min, tt.max); got != tt.want {
				t.Fatalf("ClampInt16(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Fatal("expected values to be nearly equal")
	}
	if NearlyEqual(1.0, 1.1, 1e-3) {
		t.Fatal("expected values to differ")
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestDBFS(t *testing.T) {
	if got := DBFS(32768); !NearlyEqual(got, 0, 1e-12) {
		t.Fatalf("DBFS(32768) = %v, want 0", got)
	}
	if got := DBFS(-16384); !NearlyEqual(got, -6.020599913279624, 1e-9) {
		t.Fatalf("DBFS(-16384) = %v, want ~-6.02", got)
	}
	if !math.IsInf(DBFS(0), -1) {
		t.Fatal("expected -Inf for silence")
	}
}
