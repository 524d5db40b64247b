package testutils

import (
	"context"
	"sync"
)

// TextRecorder records every text callback it receives. It is safe for
// use from the throttle's timer goroutine.
type TextRecorder struct {
	mu    sync.Mutex
	texts []string

	// FailOn causes OnText to return Err when the text matches.
	FailOn string
	Err    error
}

// NewTextRecorder creates an empty TextRecorder.
func NewTextRecorder() *TextRecorder {
	return &TextRecorder{}
}

func (r *TextRecorder) OnText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.texts = append(r.texts, text)
	if r.Err != nil && text == r.FailOn {
		return r.Err
	}
	return nil
}

// Texts returns a copy of the recorded texts.
func (r *TextRecorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.texts))
	copy(out, r.texts)
	return out
}
