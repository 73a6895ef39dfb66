// Package transport provides capture.Transport implementations that move
// completed capture halves off the capture path.
//
// Async behaves like a UART DMA channel: transfers are written one at a time
// in order, started without blocking, with completion reported through a
// callback. A short queue absorbs bursts; when it is full the transport
// reports busy. It works
// over any io.Writer, so the same code drives a serial port, a file or a
// network connection. Tee fans one half out to several transports.
//
// The subpackages add device- and protocol-specific transports: serial
// ports, WebSocket listeners and local audio monitoring.
package transport
