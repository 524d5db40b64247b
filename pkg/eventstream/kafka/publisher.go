// Package kafka publishes completion events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/textstream/pkg/eventstream"
	"github.com/papercomputeco/textstream/pkg/logger"
)

// ErrNoBrokers is returned by NewPublisher when no broker address is given.
var ErrNoBrokers = errors.New("no kafka brokers configured")

// ErrNoTopic is returned by NewPublisher when the topic is empty.
var ErrNoTopic = errors.New("no kafka topic configured")

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config holds the Kafka connection settings.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Publisher writes each completion event as one JSON message keyed by its
// event id.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka publisher for cfg. A nil logger discards logs.
func NewPublisher(cfg Config, l *slog.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}

	return newPublisher(w, cfg.Topic, l), nil
}

func newPublisher(w messageWriter, topic string, l *slog.Logger) *Publisher {
	if l == nil {
		l = logger.Nop()
	}

	return &Publisher{
		writer: w,
		topic:  topic,
		logger: l,
	}
}

// PublishCompletion marshals event and writes it to the topic.
func (p *Publisher) PublishCompletion(ctx context.Context, event *eventstream.CompletionEvent) error {
	if event == nil {
		return eventstream.ErrNilCompletionEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling completion event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.EventID),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing completion event to %s: %w", p.topic, err)
	}

	p.logger.Debug("published completion event",
		"topic", p.topic,
		"event_id", event.EventID,
		"bytes", len(value),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
