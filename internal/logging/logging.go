// Package logging builds the slog logger the host tools write to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/term"
)

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// New returns a logger writing to w. Format "text" and "json" select the
// handler; "auto" uses text on a terminal and JSON otherwise, so piped logs
// stay machine-readable.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "text":
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "auto", "":
		if !IsTerminal(w) {
			return slog.New(slog.NewJSONHandler(w, opts)), nil
		}
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
