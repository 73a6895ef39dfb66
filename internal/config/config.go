// Package config holds the settings shared by the host tools. Values come
// from MICFRONT_* environment variables and can be overridden by flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "MICFRONT_"

// Config describes one capture front end and where its output goes.
type Config struct {
	// Source is "tone", "malgo", "portaudio" or a .wav/.pcm path.
	Source   string
	Device   string
	Realtime bool
	Duration time.Duration

	SampleRate int
	Channels   int
	Frames     int

	Filter   bool
	CutoffHz float64

	SerialPort string
	Baud       int
	OutFile    string
	HTTPAddr   string
	Monitor    bool

	LogLevel string
	// LogFormat is "auto", "text" or "json". Auto picks text on a terminal.
	LogFormat string
}

// Load reads the environment on top of the built-in defaults.
func Load() *Config {
	return &Config{
		Source:     getEnv("SOURCE", "tone"),
		Device:     getEnv("DEVICE", ""),
		Realtime:   getEnvBool("REALTIME", true),
		Duration:   getEnvDuration("DURATION", 0),
		SampleRate: getEnvInt("SAMPLE_RATE", 8000),
		Channels:   getEnvInt("CHANNELS", 1),
		Frames:     getEnvInt("FRAMES", 1),
		Filter:     getEnvBool("FILTER", false),
		CutoffHz:   getEnvFloat("CUTOFF_HZ", 5000),
		SerialPort: getEnv("SERIAL_PORT", ""),
		Baud:       getEnvInt("BAUD", 921600),
		OutFile:    getEnv("OUT_FILE", ""),
		HTTPAddr:   getEnv("HTTP_ADDR", ""),
		Monitor:    getEnvBool("MONITOR", false),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "auto"),
	}
}

// RegisterFlags binds every field to a flag whose default is the current
// value, so flags take precedence over the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Source, "source", c.Source, "capture source: tone, malgo, portaudio or a .wav/.pcm file")
	fs.StringVar(&c.Device, "device", c.Device, "capture device name filter")
	fs.BoolVar(&c.Realtime, "realtime", c.Realtime, "pace file and tone sources in real time")
	fs.DurationVar(&c.Duration, "duration", c.Duration, "stop after this long (0 = until interrupted)")
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.Channels, "channels", c.Channels, "number of microphones")
	fs.IntVar(&c.Frames, "frames", c.Frames, "1 ms frames per capture buffer")
	fs.BoolVar(&c.Filter, "filter", c.Filter, "apply the one-pole low-pass before relaying")
	fs.Float64Var(&c.CutoffHz, "cutoff", c.CutoffHz, "low-pass cutoff in Hz")
	fs.StringVar(&c.SerialPort, "port", c.SerialPort, "serial port device")
	fs.IntVar(&c.Baud, "baud", c.Baud, "serial baud rate")
	fs.StringVar(&c.OutFile, "out", c.OutFile, "raw PCM output file")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "websocket listen address, e.g. :8080")
	fs.BoolVar(&c.Monitor, "monitor", c.Monitor, "play the stream on the default audio output")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "auto, text or json")
}

// Validate checks the capture layout and filter settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Source == "" {
		errs = append(errs, errors.New("source is empty"))
	}
	if c.SampleRate < 1000 {
		errs = append(errs, fmt.Errorf("sample rate must be >= 1000 Hz: %d", c.SampleRate))
	}
	if c.Channels <= 0 {
		errs = append(errs, fmt.Errorf("channels must be > 0: %d", c.Channels))
	}
	if c.Frames <= 0 {
		errs = append(errs, fmt.Errorf("frames must be > 0: %d", c.Frames))
	}
	if c.Filter && !(c.CutoffHz > 0) {
		errs = append(errs, fmt.Errorf("cutoff must be > 0 Hz: %g", c.CutoffHz))
	}
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("baud must be > 0: %d", c.Baud))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must be >= 0: %v", c.Duration))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
