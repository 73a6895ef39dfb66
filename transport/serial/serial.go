// Package serial carries capture halves over a serial line, the host-side
// counterpart of the microcontroller's UART DMA link, and reads them back.
package serial

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/cwbudde/algo-micfront/pcm"
	"github.com/cwbudde/algo-micfront/transport"
)

// DefaultBaud is the line rate used when Config.Baud is zero.
const DefaultBaud = 921600

// DefaultReadTimeout bounds a single Read when Config.ReadTimeout is zero.
const DefaultReadTimeout = 500 * time.Millisecond

// Config selects and configures a serial device.
type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
}

// Conn is the byte stream under a Port. *serial.Port from
// github.com/tarm/serial satisfies it; tests substitute pipes.
type Conn interface {
	io.ReadWriteCloser
}

// Option configures a Port.
type Option func(*Port)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Port) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Port is a capture.Transport that writes halves as little-endian PCM and
// a sample reader for the receiving side.
type Port struct {
	name   string
	conn   Conn
	async  *transport.Async
	reader *pcm.Reader
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open opens the device described by cfg.
func Open(cfg Config, opts ...Option) (*Port, error) {
	if cfg.Name == "" {
		return nil, errors.New("serial: device name is empty")
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Baud < 0 {
		return nil, fmt.Errorf("serial: baud must be > 0: %d", cfg.Baud)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	sp, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Name, err)
	}

	p := NewPort(cfg.Name, sp, opts...)
	p.logger.Info("serial port open", "device", cfg.Name, "baud", cfg.Baud, "read_timeout", cfg.ReadTimeout)

	return p, nil
}

// NewPort wraps an already open connection.
func NewPort(name string, conn Conn, opts ...Option) *Port {
	p := &Port{
		name:   name,
		conn:   conn,
		async:  transport.NewAsync(conn),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.reader = pcm.NewReader(timeoutReader{conn})

	return p
}

// Name returns the device name.
func (p *Port) Name() string { return p.name }

// TransmitAsync queues samples for transmission. It returns an error
// matching capture.ErrBusy when the line has fallen a full queue behind.
func (p *Port) TransmitAsync(samples []int16, done func(error)) error {
	return p.async.TransmitAsync(samples, done)
}

// Read decodes received samples into dst. A read timeout with no data
// returns 0 and a nil error.
func (p *Port) Read(dst []int16) (int, error) {
	return p.reader.Read(dst)
}

// Counters returns transfers, bytes and failures of the transmit side.
func (p *Port) Counters() (transfers, bytes, failures uint64) {
	return p.async.Counters()
}

// Close waits for a running transfer and closes the device.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		_ = p.async.Close()
		p.closeErr = p.conn.Close()

		transfers, bytes, failures := p.async.Counters()
		p.logger.Info("serial port closed",
			"device", p.name, "transfers", transfers, "bytes", bytes, "failures", failures)
	})
	return p.closeErr
}

// timeoutReader turns the empty EOF that a tty returns on read timeout into
// an empty read, so a quiet line is not mistaken for end of stream.
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(b []byte) (int, error) {
	n, err := t.r.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
