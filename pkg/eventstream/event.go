package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeCompletionFinished is emitted after a completion stream is
	// decoded to its end.
	EventTypeCompletionFinished = "textstream.completion.finished"
)

// CompletionEvent is a transport-neutral event payload for a finished
// completion stream.
type CompletionEvent struct {
	SchemaVersion int              `json:"schema_version"`
	EventType     string           `json:"event_type"`
	EventID       string           `json:"event_id"`
	EmittedAt     time.Time        `json:"emitted_at"`
	Source        EventSource      `json:"source"`
	RequestMeta   CompletionMeta   `json:"request_meta"`
	Result        CompletionResult `json:"result"`
}

// EventSource identifies the endpoint the completion was streamed from.
type EventSource struct {
	Host  string `json:"host"`
	Path  string `json:"path"`
	Model string `json:"model,omitempty"`
}

// CompletionMeta captures request lifecycle metadata for the event.
type CompletionMeta struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	ThrottleMs  int64     `json:"throttle_ms,omitempty"`
	HTTPStatus  int       `json:"http_status"`
}

// CompletionResult captures what the stream produced.
type CompletionResult struct {
	Text      string `json:"text"`
	Chunks    int    `json:"chunks"`
	Callbacks int    `json:"callbacks"`
	Warnings  int    `json:"warnings,omitempty"`
}

// NewCompletionEvent returns an event with the schema fields, a fresh id
// and the emission time filled in.
func NewCompletionEvent(source EventSource, meta CompletionMeta, result CompletionResult) *CompletionEvent {
	return &CompletionEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeCompletionFinished,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		RequestMeta:   meta,
		Result:        result,
	}
}
