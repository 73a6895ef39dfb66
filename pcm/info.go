package pcm

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	timestats "github.com/cwbudde/algo-micfront/stats/time"
)

// Info describes a .pcm file in the plain-text sidecar written next to it.
type Info struct {
	Source     string // input the samples came from, if any
	Output     string
	Format     string
	SampleRate float64
	Channels   int
	Samples    int
	Min, Max   int16
	StdDev     float64
	Created    time.Time
	// Notes are appended as a bulleted list, e.g. signal components.
	Notes []string
}

// NewInfo fills the level fields of an Info from samples.
func NewInfo(samples []int16, sampleRate float64, channels int) Info {
	st := timestats.Calculate(samples)
	return Info{
		Format:     "int16 little-endian",
		SampleRate: sampleRate,
		Channels:   max(channels, 1),
		Samples:    len(samples),
		Min:        st.Min,
		Max:        st.Max,
		StdDev:     st.StdDev,
		Created:    time.Now(),
	}
}

// Bytes returns the encoded size of the samples.
func (i *Info) Bytes() int64 {
	return int64(i.Samples) * BytesPerSample
}

// Duration returns the playback time of the samples.
func (i *Info) Duration() time.Duration {
	if i.SampleRate <= 0 || i.Channels <= 0 {
		return 0
	}
	frames := float64(i.Samples) / float64(i.Channels)
	return time.Duration(math.Round(frames / i.SampleRate * float64(time.Second)))
}

// WriteTo writes the sidecar text.
func (i *Info) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	b.WriteString("PCM file info\n")
	b.WriteString("=============\n")
	if i.Source != "" {
		fmt.Fprintf(&b, "source:      %s\n", i.Source)
	}
	if i.Output != "" {
		fmt.Fprintf(&b, "output:      %s\n", i.Output)
	}
	fmt.Fprintf(&b, "format:      %s\n", i.Format)
	fmt.Fprintf(&b, "sample rate: %.0f Hz\n", i.SampleRate)
	fmt.Fprintf(&b, "channels:    %d\n", i.Channels)
	fmt.Fprintf(&b, "samples:     %d\n", i.Samples)
	fmt.Fprintf(&b, "duration:    %.3f s\n", i.Duration().Seconds())
	fmt.Fprintf(&b, "bytes:       %d\n", i.Bytes())
	fmt.Fprintf(&b, "range:       %d to %d\n", i.Min, i.Max)
	fmt.Fprintf(&b, "std dev:     %.2f\n", i.StdDev)
	if !i.Created.IsZero() {
		fmt.Fprintf(&b, "created:     %s\n", i.Created.Format(time.DateTime))
	}
	if len(i.Notes) > 0 {
		b.WriteString("\nnotes:\n")
		for _, n := range i.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// InfoPath returns the sidecar path for a .pcm path: name.pcm -> name_info.txt.
func InfoPath(pcmPath string) string {
	ext := filepath.Ext(pcmPath)
	return strings.TrimSuffix(pcmPath, ext) + "_info.txt"
}

// Save writes the sidecar to path.
func (i *Info) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pcm: %w", err)
	}
	if _, err := i.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("pcm: %w", err)
	}
	return f.Close()
}
