// Package dither quantizes normalized float samples to int16 with optional
// dither noise and first-order error feedback.
package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution used for dither noise.
type Type int

const (
	// None truncates toward zero without noise.
	None Type = iota
	// Rectangular adds uniform noise of one LSB peak.
	Rectangular
	// Triangular adds TPDF noise, the sum of two uniform draws.
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rect", "tpdf"}

// String returns the flag name of the dither type.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType maps a flag value to a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("dither: unknown type %q (want none, rect or tpdf)", s)
}
