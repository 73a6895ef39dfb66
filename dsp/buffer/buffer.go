package buffer

// Block wraps an interleaved int16 slice with reuse-friendly semantics.
type Block struct {
	samples []int16
}

// New returns a zero-filled Block of the given length.
func New(length int) *Block {
	return &Block{samples: make([]int16, max(length, 0))}
}

// FromSlice wraps an existing slice without copying.
func FromSlice(s []int16) *Block {
	return &Block{samples: s}
}

// Samples returns the underlying slice.
func (b *Block) Samples() []int16 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Block) Len() int {
	return len(b.samples)
}

// Cap returns the capacity of the backing slice.
func (b *Block) Cap() int {
	return cap(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// Elements beyond the previous length are zeroed.
func (b *Block) Resize(n int) {
	n = max(n, 0)
	old := len(b.samples)
	if n > cap(b.samples) {
		s := make([]int16, n)
		copy(s, b.samples)
		b.samples = s
		return
	}
	b.samples = b.samples[:n]
	if n > old {
		clear(b.samples[old:])
	}
}

// Set replaces the contents with a copy of src.
func (b *Block) Set(src []int16) {
	if len(src) > cap(b.samples) {
		b.samples = make([]int16, len(src))
	}
	b.samples = b.samples[:len(src)]
	copy(b.samples, src)
}

// Zero sets all samples to 0.
func (b *Block) Zero() {
	clear(b.samples)
}
