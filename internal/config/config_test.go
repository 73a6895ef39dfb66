package config

import (
	"flag"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.Source != "tone" || c.SampleRate != 8000 || c.Channels != 1 || c.Frames != 1 {
		t.Fatalf("capture defaults = %+v", c)
	}
	if c.Baud != 921600 || c.Filter || c.CutoffHz != 5000 || !c.Realtime {
		t.Fatalf("link defaults = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("MICFRONT_SAMPLE_RATE", "16000")
	t.Setenv("MICFRONT_CHANNELS", "2")
	t.Setenv("MICFRONT_FILTER", "1")
	t.Setenv("MICFRONT_CUTOFF_HZ", "3000.5")
	t.Setenv("MICFRONT_DURATION", "1m30s")
	t.Setenv("MICFRONT_BAUD", "not-a-number")

	c := Load()
	if c.SampleRate != 16000 || c.Channels != 2 || !c.Filter || c.CutoffHz != 3000.5 {
		t.Fatalf("Load() = %+v", c)
	}
	if c.Duration != 90*time.Second {
		t.Fatalf("Duration = %v, want 1m30s", c.Duration)
	}
	if c.Baud != 921600 {
		t.Fatalf("Baud = %d, want default on parse error", c.Baud)
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("MICFRONT_SOURCE", "malgo")
	t.Setenv("MICFRONT_FRAMES", "4")

	c := Load()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-source", "in.wav", "-port", "/dev/ttyUSB0"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if c.Source != "in.wav" || c.SerialPort != "/dev/ttyUSB0" || c.Frames != 4 {
		t.Fatalf("config = %+v", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"low rate", func(c *Config) { c.SampleRate = 500 }, "sample rate"},
		{"no channels", func(c *Config) { c.Channels = 0 }, "channels"},
		{"no frames", func(c *Config) { c.Frames = -1 }, "frames"},
		{"bad cutoff", func(c *Config) { c.Filter, c.CutoffHz = true, 0 }, "cutoff"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"negative duration", func(c *Config) { c.Duration = -time.Second }, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
}
