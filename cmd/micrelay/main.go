// Command micrelay runs the microphone front end on a host: it captures
// from a microphone, a recording or the test tone, optionally low-passes
// each microphone, and relays the double-buffered stream to a serial port,
// a file, WebSocket clients and the local speakers.
//
// Usage:
//
//	micrelay [flags]
//
// Every flag can also be set through a MICFRONT_* environment variable,
// e.g. MICFRONT_SERIAL_PORT or MICFRONT_SAMPLE_RATE.
//
// Examples:
//
//	micrelay -port /dev/ttyUSB0
//	micrelay -source malgo -filter -cutoff 3000 -http :8080
//	micrelay -source capture.wav -out relayed.pcm -realtime=false
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-micfront/internal/config"
	"github.com/cwbudde/algo-micfront/internal/logging"
)

func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	verbose := flag.Bool("v", false, "debug logging (same as -log-level debug)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: micrelay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Relays captured microphone PCM to serial, file, websocket and speaker outputs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger, err := logging.New(os.Stderr, level, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	if _, err := run(ctx, cfg, logger); err != nil {
		logger.Error("micrelay failed", "error", err)
		os.Exit(1)
	}
}
