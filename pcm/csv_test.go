package pcm

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-micfront/internal/testutil"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"uint16": FormatUint16, "uint16_t": FormatUint16, "INT16": FormatInt16, "int16_t": FormatInt16,
	} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("float32"); err == nil {
		t.Fatal("expected error")
	}
}

func TestConvertCSVHeaderDetection(t *testing.T) {
	withHeader := "timestamp,value\n0.000,1\n0.125,2\n"
	noHeader := "0.000,1\n0.125,2\n"

	for name, in := range map[string]string{"header": withHeader, "plain": noHeader} {
		t.Run(name, func(t *testing.T) {
			c, err := ConvertCSV(strings.NewReader(in),
				WithFormat(FormatInt16), WithNormalize(false), WithRemoveDC(false))
			if err != nil {
				t.Fatalf("ConvertCSV() error = %v", err)
			}
			if c.HeaderSkipped != (name == "header") {
				t.Fatalf("HeaderSkipped = %v", c.HeaderSkipped)
			}
			testutil.RequireInt16Equal(t, c.Samples, []int16{1, 2})
		})
	}
}

func TestConvertCSVUint16Offset(t *testing.T) {
	in := "t,v\n0,0\n1,32768\n2,65535\n3,70000\n"
	c, err := ConvertCSV(strings.NewReader(in), WithRemoveDC(false), WithNormalize(true), WithSampleRate(1))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}

	// Offset to [-32768, 32767], then scaled so the peak is 32767.
	want := []int16{-32767, 0, 32766, 32766}
	testutil.RequireInt16Equal(t, c.Samples, want)

	if c.Clipped != 1 || c.RawMax != 70000 || c.RawMin != 0 {
		t.Fatalf("Clipped=%d RawMin=%d RawMax=%d", c.Clipped, c.RawMin, c.RawMax)
	}
	if len(c.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one clip warning", c.Warnings)
	}
	if c.MeasuredRate != 1 {
		t.Fatalf("MeasuredRate = %v, want 1", c.MeasuredRate)
	}
}

func TestConvertCSVUint16Raw(t *testing.T) {
	in := "0,1\n1,65535\n"
	c, err := ConvertCSV(strings.NewReader(in), WithNormalize(false), WithRemoveDC(false), WithSampleRate(1))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	// Stored bit-for-bit: 65535 reads back as -1.
	testutil.RequireInt16Equal(t, c.Samples, []int16{1, -1})
}

func TestConvertCSVRemoveDC(t *testing.T) {
	in := "0,1000\n1,1010\n2,990\n3,1000\n"
	c, err := ConvertCSV(strings.NewReader(in), WithFormat(FormatInt16), WithSampleRate(1))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	testutil.RequireInt16Equal(t, c.Samples, []int16{0, 10, -10, 0})
}

func TestConvertCSVRateWarning(t *testing.T) {
	// 4 samples over 3 ms: 1000 Hz against a nominal 8000 Hz.
	in := "0.000,1\n0.001,2\n0.002,3\n0.003,4\n"
	c, err := ConvertCSV(strings.NewReader(in), WithFormat(FormatInt16))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	if c.MeasuredRate < 999 || c.MeasuredRate > 1001 {
		t.Fatalf("MeasuredRate = %v, want ~1000", c.MeasuredRate)
	}
	if len(c.Warnings) != 1 || !strings.Contains(c.Warnings[0], "measured rate") {
		t.Fatalf("Warnings = %v", c.Warnings)
	}
}

func TestConvertCSVErrors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"header only":   "t,v\n",
		"bad value":     "0,1\n1,abc\n",
		"bad timestamp": "0,1\nxyz,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ConvertCSV(strings.NewReader(in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConvertCSVSkipsShortRows(t *testing.T) {
	c, err := ConvertCSV(strings.NewReader("0,5\n\n1\n2,7\n"), WithFormat(FormatInt16), WithRemoveDC(false), WithNormalize(false))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	testutil.RequireInt16Equal(t, c.Samples, []int16{5, 7})
}

func TestWriteCSVReadsBack(t *testing.T) {
	in := testutil.DeterministicInt16Noise(11, 400)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, in, 8000, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "timestamp,value\n1700000000.000000,") {
		t.Fatalf("unexpected start: %q", buf.String()[:40])
	}

	conv, err := ConvertCSV(&buf, WithFormat(FormatInt16), WithNormalize(false), WithRemoveDC(false))
	if err != nil {
		t.Fatalf("ConvertCSV() error = %v", err)
	}
	if !conv.HeaderSkipped || len(conv.Warnings) != 0 {
		t.Fatalf("header %v, warnings %v", conv.HeaderSkipped, conv.Warnings)
	}
	testutil.RequireInt16Equal(t, conv.Samples, in)
}

func TestWriteCSVBadRate(t *testing.T) {
	if err := WriteCSV(&bytes.Buffer{}, []int16{1}, 0, time.Now()); err == nil {
		t.Fatal("WriteCSV() accepted a zero rate")
	}
}
