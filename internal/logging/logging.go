// Package logging builds the diagnostic logger used behind --verbose.
// User-facing progress goes through package tui; this logger is for
// debugging what a run did and in which order.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// New returns a text logger writing to w at debug level when verbose is set,
// and a logger that discards everything otherwise.
func New(w io.Writer, verbose bool) *slog.Logger {
	if !verbose || w == nil {
		return Discard()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewRunID generates a short identifier that tags every record of one run.
func NewRunID() (string, error) {
	id, err := gonanoid.Generate(runIDAlphabet, 10)
	if err != nil {
		return "", fmt.Errorf("generating run id: %w", err)
	}
	return id, nil
}

// WithRun attaches a fresh run id to logger. If id generation fails the
// logger is returned unchanged.
func WithRun(logger *slog.Logger) *slog.Logger {
	id, err := NewRunID()
	if err != nil {
		return logger
	}
	return logger.With("run", id)
}
