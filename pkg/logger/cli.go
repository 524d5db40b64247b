package logger

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// CLI returns the logger used by textstream commands. Records go to
// stderr, pretty when stderr is a terminal, so stdout carries only the
// completion text. When logFile is set, JSON records are also appended to
// it and the returned func closes the file.
func CLI(debug bool, logFile string) (*slog.Logger, func() error, error) {
	console := New(
		WithDebug(debug),
		WithPretty(term.IsTerminal(int(os.Stderr.Fd()))),
		WithWriter(os.Stderr),
	)

	if logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := New(
		WithDebug(debug),
		WithJSON(true),
		WithWriter(f),
	)

	return Multi(console, file), f.Close, nil
}
