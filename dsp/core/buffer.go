package core

// EnsureLenInt16 returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLenInt16(buf []int16, n int) []int16 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]int16, n)
}

// EnsureLen returns a float64 slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Int16ToFloat widens src into dst without scaling and returns dst resized to len(src).
func Int16ToFloat(dst []float64, src []int16) []float64 {
	dst = EnsureLen(dst, len(src))
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

// FloatToInt16 narrows src into dst using [SaturateInt16] and returns dst resized to len(src).
func FloatToInt16(dst []int16, src []float64) []int16 {
	dst = EnsureLenInt16(dst, len(src))
	for i, v := range src {
		dst[i] = SaturateInt16(v)
	}
	return dst
}

// ZeroInt16 sets all values in buf to 0.
func ZeroInt16(buf []int16) {
	for i := range buf {
		buf[i] = 0
	}
}
