// Package websocket streams capture halves to any number of WebSocket
// clients, e.g. a browser-side live level or spectrum view.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/cwbudde/algo-micfront/pcm"
)

// Defaults for a Broadcaster.
const (
	DefaultQueueSize    = 64
	DefaultWriteTimeout = 2 * time.Second
)

// FormatMessage is sent as a JSON text message when a client connects.
// Binary messages that follow carry little-endian int16 samples.
type FormatMessage struct {
	Type       string  `json:"type"`
	SampleRate float64 `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Encoding   string  `json:"encoding"`
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broadcaster) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithQueueSize sets the number of halves buffered per client before new
// ones are dropped for that client.
func WithQueueSize(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithWriteTimeout bounds a single message write to a client.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.writeTimeout = d
		}
	}
}

// WithOriginPatterns sets the allowed Origin host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(b *Broadcaster) {
		b.origins = patterns
	}
}

// WithFormat sets the stream format announced to new clients.
func WithFormat(sampleRate float64, channels int) Option {
	return func(b *Broadcaster) {
		b.format.SampleRate = sampleRate
		b.format.Channels = channels
	}
}

type client struct {
	send   chan []byte
	cancel context.CancelFunc
}

// Broadcaster is an http.Handler that accepts WebSocket clients and a
// capture.Transport that sends every half to all of them. A slow client
// loses halves instead of stalling the others.
type Broadcaster struct {
	logger       *slog.Logger
	queueSize    int
	writeTimeout time.Duration
	origins      []string
	format       FormatMessage

	mu      sync.RWMutex
	clients map[*client]struct{}

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewBroadcaster returns a Broadcaster with no clients.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		logger:       slog.Default(),
		queueSize:    DefaultQueueSize,
		writeTimeout: DefaultWriteTimeout,
		format: FormatMessage{
			Type:       "format",
			SampleRate: 8000,
			Channels:   1,
			Encoding:   "s16le",
		},
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// ServeHTTP upgrades the request and streams until the client goes away.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: b.origins,
	})
	if err != nil {
		b.logger.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	// Clients only listen; CloseRead handles control frames and cancels
	// ctx when the peer disconnects.
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()

	if err := b.write(ctx, func(ctx context.Context) error {
		return wsjson.Write(ctx, conn, b.format)
	}); err != nil {
		b.logger.Debug("websocket format write error", "error", err)
		return
	}

	c := &client{send: make(chan []byte, b.queueSize), cancel: cancel}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	n := len(b.clients)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, c)
		b.mu.Unlock()
	}()

	b.logger.Info("websocket connected", "remote", r.RemoteAddr, "clients", n)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("websocket disconnected", "remote", r.RemoteAddr)
			return
		case msg := <-c.send:
			if err := b.write(ctx, func(ctx context.Context) error {
				return conn.Write(ctx, websocket.MessageBinary, msg)
			}); err != nil {
				b.logger.Debug("websocket write error", "remote", r.RemoteAddr, "error", err)
				return
			}
			b.sent.Add(1)
		}
	}
}

func (b *Broadcaster) write(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, b.writeTimeout)
	defer cancel()
	return fn(ctx)
}

// TransmitAsync queues samples for every connected client and calls done
// before returning. It never reports busy.
func (b *Broadcaster) TransmitAsync(samples []int16, done func(error)) error {
	msg := pcm.Encode(nil, samples)

	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	b.mu.RUnlock()

	if done != nil {
		done(nil)
	}
	return nil
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Counters returns messages delivered and messages dropped on full queues.
func (b *Broadcaster) Counters() (sent, dropped uint64) {
	return b.sent.Load(), b.dropped.Load()
}

// Close disconnects all clients.
func (b *Broadcaster) Close() error {
	b.mu.RLock()
	for c := range b.clients {
		c.cancel()
	}
	b.mu.RUnlock()
	return nil
}
