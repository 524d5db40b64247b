package cliui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TextPrinter writes a growing text to w one suffix at a time. Each Print
// writes only what was appended since the previous call.
type TextPrinter struct {
	w io.Writer

	mu      sync.Mutex
	printed string
}

// NewTextPrinter creates a TextPrinter writing to w.
func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{w: w}
}

// Print writes the part of text not yet printed. When text does not extend
// what was printed before, it starts over on a new line.
func (p *TextPrinter) Print(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	suffix, ok := strings.CutPrefix(text, p.printed)
	if !ok {
		if _, err := fmt.Fprintln(p.w); err != nil {
			return err
		}
		suffix = text
	}
	p.printed = text

	if suffix == "" {
		return nil
	}

	_, err := io.WriteString(p.w, suffix)
	return err
}

// Printed returns everything printed so far.
func (p *TextPrinter) Printed() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printed
}
