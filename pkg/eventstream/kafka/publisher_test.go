package kafka

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/textstream/pkg/eventstream"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)

var _ = Describe("Publisher", func() {
	var (
		w *fakeWriter
		p *Publisher
	)

	BeforeEach(func() {
		w = &fakeWriter{}
		p = newPublisher(w, "completions", nil)
	})

	Describe("NewPublisher", func() {
		It("requires brokers", func() {
			_, err := NewPublisher(Config{Topic: "completions"}, nil)
			Expect(err).To(MatchError(ErrNoBrokers))
		})

		It("requires a topic", func() {
			_, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}}, nil)
			Expect(err).To(MatchError(ErrNoTopic))
		})

		It("builds a publisher without connecting", func() {
			pub, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "completions"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(pub.Close()).To(Succeed())
		})
	})

	It("returns ErrNilCompletionEvent for nil events", func() {
		err := p.PublishCompletion(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilCompletionEvent))
		Expect(w.messages).To(BeEmpty())
	})

	It("writes the event as JSON keyed by event id", func() {
		event := eventstream.NewCompletionEvent(
			eventstream.EventSource{Host: "http://localhost", Path: "/v1/completions"},
			eventstream.CompletionMeta{HTTPStatus: 200},
			eventstream.CompletionResult{Text: "Hello"},
		)

		Expect(p.PublishCompletion(context.Background(), event)).To(Succeed())
		Expect(w.messages).To(HaveLen(1))

		msg := w.messages[0]
		Expect(string(msg.Key)).To(Equal(event.EventID))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{
			Key:   "event_type",
			Value: []byte(eventstream.EventTypeCompletionFinished),
		}))

		var got eventstream.CompletionEvent
		Expect(json.Unmarshal(msg.Value, &got)).To(Succeed())
		Expect(got.Result.Text).To(Equal("Hello"))
		Expect(got.EventID).To(Equal(event.EventID))
	})

	It("wraps writer errors", func() {
		w.err = errors.New("broker unavailable")
		event := eventstream.NewCompletionEvent(eventstream.EventSource{}, eventstream.CompletionMeta{}, eventstream.CompletionResult{})

		err := p.PublishCompletion(context.Background(), event)
		Expect(err).To(MatchError(ContainSubstring("broker unavailable")))
		Expect(err).To(MatchError(ContainSubstring("completions")))
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})
})
