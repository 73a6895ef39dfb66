package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cwbudde/algo-micfront/capture"
	"github.com/cwbudde/algo-micfront/internal/config"
	"github.com/cwbudde/algo-micfront/internal/pipeline"
	"github.com/cwbudde/algo-micfront/source"
	"github.com/cwbudde/algo-micfront/source/malgo"
	"github.com/cwbudde/algo-micfront/source/portaudio"
	"github.com/cwbudde/algo-micfront/source/tone"
	"github.com/cwbudde/algo-micfront/source/wavfile"
	"github.com/cwbudde/algo-micfront/transport"
	"github.com/cwbudde/algo-micfront/transport/playback"
	"github.com/cwbudde/algo-micfront/transport/serial"
	"github.com/cwbudde/algo-micfront/transport/websocket"
)

// toneSeconds is the length of the rendered test tone; it loops.
const toneSeconds = 10

// run relays until the source ends or ctx is done and returns the final
// channel counters.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (capture.Stats, error) {
	src, err := openSource(cfg, logger)
	if err != nil {
		return capture.Stats{}, err
	}

	// Recordings carry their own format.
	if f := src.Format(); f.SampleRate != cfg.SampleRate || f.Channels != cfg.Channels {
		logger.Info("using source format", "rate", f.SampleRate, "channels", f.Channels)
		cfg.SampleRate, cfg.Channels = f.SampleRate, f.Channels
	}

	outs, err := openOutputs(cfg, logger)
	if err != nil {
		return capture.Stats{}, err
	}
	defer outs.close(logger)

	p, err := pipeline.New(pipeline.FromConfig(cfg), transport.Tee(outs.transports...), logger)
	if err != nil {
		return capture.Stats{}, err
	}

	logger.Info("relaying", "source", cfg.Source, "rate", cfg.SampleRate, "channels", cfg.Channels,
		"buffer", p.Ring().Len(), "outputs", len(outs.transports))

	err = p.Run(ctx, src)
	// Let the last transfers finish before counting.
	outs.drain()
	p.Relay().LogStats()
	if n := p.Stalls(); n > 0 {
		logger.Warn("outputs fell behind", "stalls", n)
	}

	return p.Stats(), err
}

func openSource(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	format := source.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels}

	switch cfg.Source {
	case "tone":
		return tone.New(format, toneSeconds, tone.WithLoop(true), tone.WithRealtime(cfg.Realtime))
	case "malgo":
		return malgo.New(format, malgo.WithDevice(cfg.Device), malgo.WithLogger(logger))
	case "portaudio":
		return portaudio.New(format, portaudio.WithDevice(cfg.Device), portaudio.WithLogger(logger))
	default:
		return wavfile.Open(cfg.Source, wavfile.WithRealtime(cfg.Realtime), wavfile.WithRawFormat(format))
	}
}

type outputs struct {
	transports []capture.Transport
	drains     []func()
	closers    []func() error
}

func (o *outputs) add(t capture.Transport, drain func(), closer func() error) {
	o.transports = append(o.transports, t)
	if drain != nil {
		o.drains = append(o.drains, drain)
	}
	if closer != nil {
		o.closers = append(o.closers, closer)
	}
}

func (o *outputs) drain() {
	for _, d := range o.drains {
		d()
	}
}

func (o *outputs) close(logger *slog.Logger) {
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			logger.Warn("close output", "error", err)
		}
	}
}

func openOutputs(cfg *config.Config, logger *slog.Logger) (_ *outputs, err error) {
	o := &outputs{}
	defer func() {
		if err != nil {
			o.close(logger)
		}
	}()

	if cfg.SerialPort != "" {
		p, err := serial.Open(serial.Config{Name: cfg.SerialPort, Baud: cfg.Baud}, serial.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		o.add(p, func() { _ = p.Close() }, p.Close)
	}

	if cfg.OutFile != "" {
		f, err := os.Create(cfg.OutFile)
		if err != nil {
			return nil, err
		}
		a := transport.NewAsync(f)
		o.add(a, func() { _ = a.Close() }, func() error {
			_ = a.Close()
			_, bytes, failures := a.Counters()
			logger.Info("output file closed", "path", cfg.OutFile, "bytes", bytes, "failures", failures)
			return f.Close()
		})
	}

	if cfg.HTTPAddr != "" {
		b := websocket.NewBroadcaster(
			websocket.WithLogger(logger),
			websocket.WithFormat(float64(cfg.SampleRate), cfg.Channels),
		)
		mux := http.NewServeMux()
		mux.Handle("/stream", b)

		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("websocket server starting", "addr", cfg.HTTPAddr, "path", "/stream")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()

		o.add(b, nil, func() error {
			_ = b.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			sent, dropped := b.Counters()
			logger.Info("websocket server stopped", "sent", sent, "dropped", dropped)
			return srv.Shutdown(ctx)
		})
	}

	if cfg.Monitor {
		m, err := playback.New(cfg.SampleRate, cfg.Channels, playback.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		o.add(m, nil, m.Close)
	}

	if len(o.transports) == 0 {
		return nil, fmt.Errorf("no output: set -port, -out, -http or -monitor")
	}

	return o, nil
}
