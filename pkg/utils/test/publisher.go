package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/textstream/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.CompletionEvent

	// FailPublish causes PublishCompletion to return an error.
	FailPublish bool
	Closed      bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishCompletion(_ context.Context, event *eventstream.CompletionEvent) error {
	if event == nil {
		return eventstream.ErrNilCompletionEvent
	}
	if m.FailPublish {
		return errors.New("mock publish failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events in order.
func (m *MockPublisher) Events() []*eventstream.CompletionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*eventstream.CompletionEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockPublisher) Close() error {
	m.Closed = true
	return nil
}
