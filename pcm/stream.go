package pcm

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader decodes samples from a byte stream. A read that ends between the
// two bytes of a sample keeps the first byte for the next call, so serial
// links that deliver arbitrary chunks decode correctly.
type Reader struct {
	r        io.Reader
	buf      []byte
	carry    byte
	hasCarry bool
}

// NewReader returns a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read decodes up to len(dst) samples. It returns the number of samples
// decoded and any read error. At EOF with a dangling byte the error wraps
// ErrOddLength.
func (r *Reader) Read(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := len(dst) * BytesPerSample
	if cap(r.buf) < want {
		r.buf = make([]byte, want)
	}
	buf := r.buf[:want]

	start := 0
	if r.hasCarry {
		buf[0] = r.carry
		start = 1
	}

	n, err := r.r.Read(buf[start:])
	total := start + n

	r.hasCarry = total%BytesPerSample != 0
	if r.hasCarry {
		r.carry = buf[total-1]
		total--
	}

	samples, _ := Decode(dst[:0], buf[:total])

	if errors.Is(err, io.EOF) && r.hasCarry && len(samples) == 0 {
		r.hasCarry = false
		return 0, fmt.Errorf("%w: trailing byte at end of stream", ErrOddLength)
	}

	return len(samples), err
}

// ReadFull reads exactly len(dst) samples unless the stream ends first.
func (r *Reader) ReadFull(dst []int16) (int, error) {
	got := 0
	for got < len(dst) {
		n, err := r.Read(dst[got:])
		got += n
		if err != nil {
			if errors.Is(err, io.EOF) && got > 0 && got < len(dst) {
				return got, io.ErrUnexpectedEOF
			}
			return got, err
		}
	}
	return got, nil
}

// ReadAll decodes r until EOF.
func ReadAll(r io.Reader) ([]int16, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(nil, b)
}

// Writer encodes samples onto a byte stream.
type Writer struct {
	w       io.Writer
	buf     []byte
	samples int64
}

// NewWriter returns a Writer encoding onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes and writes samples.
func (w *Writer) Write(samples []int16) error {
	w.buf = Encode(w.buf, samples)
	n, err := w.w.Write(w.buf)
	w.samples += int64(n / BytesPerSample)
	return err
}

// Samples returns the number of samples written so far.
func (w *Writer) Samples() int64 {
	return w.samples
}

// WriteFile writes samples to a raw .pcm file.
func WriteFile(path string, samples []int16) error {
	if err := os.WriteFile(path, Encode(nil, samples), 0o644); err != nil {
		return fmt.Errorf("pcm: %w", err)
	}
	return nil
}

// ReadFile reads a raw .pcm file.
func ReadFile(path string) ([]int16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pcm: %w", err)
	}
	return Decode(nil, data)
}
