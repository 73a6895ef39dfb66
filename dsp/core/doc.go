// Package core holds the small numeric helpers and processor options shared
// by the filter, capture and statistics packages. Samples travel through the
// module as signed 16-bit PCM; helpers here convert to and from float64 for
// arithmetic and saturate back to the int16 range.
package core
