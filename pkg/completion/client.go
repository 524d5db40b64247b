// Package completion streams a completion from an LLM HTTP endpoint and
// decodes it into text. It builds the POST request, checks the response
// and hands the body to the decoder.
package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/textstream/pkg/decoder"
	"github.com/papercomputeco/textstream/pkg/eventstream"
	"github.com/papercomputeco/textstream/pkg/logger"
	"github.com/papercomputeco/textstream/pkg/utils"
)

// maxErrorBody bounds how much of a failed response body is read.
const maxErrorBody = 4 * 1024

// Client streams completions over HTTP.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	decoderOpts []decoder.Option
	publisher   eventstream.Publisher
	recorder    io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for the client and its decoders.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithDecoderOptions appends options applied to every decode session.
func WithDecoderOptions(opts ...decoder.Option) Option {
	return func(c *Client) {
		c.decoderOpts = append(c.decoderOpts, opts...)
	}
}

// WithPublisher publishes a CompletionEvent after each successful stream.
func WithPublisher(p eventstream.Publisher) Option {
	return func(c *Client) {
		c.publisher = p
	}
}

// WithRecorder copies the raw response stream to w.
func WithRecorder(w io.Writer) Option {
	return func(c *Client) {
		c.recorder = w
	}
}

// NewClient creates a Client. Without options it uses http.DefaultClient
// and discards logs.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c
}

// Stream streams req with a default Client.
func Stream(ctx context.Context, req Request, onText decoder.TextFunc) (string, error) {
	return NewClient().Stream(ctx, req, onText)
}

// Stream sends req, decodes the streamed response and returns the final
// text. onText receives the growing text as it arrives and the final text
// once more at the end. On any failure Stream returns "" and an error.
func (c *Client) Stream(ctx context.Context, req Request, onText decoder.TextFunc) (string, error) {
	u, err := req.URL()
	if err != nil {
		return "", err
	}
	body, err := req.Body()
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	log := c.logger.With("url", u.String())
	log.Debug("sending completion request", "bytes", len(body), "throttle", req.Throttle)

	startedAt := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending completion request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		log.Error("completion stream failed", "status", resp.Status, "error", err)
		return "", err
	}

	opts := make([]decoder.Option, 0, len(c.decoderOpts)+3)
	opts = append(opts, decoder.WithLogger(log))
	opts = append(opts, c.decoderOpts...)
	if c.recorder != nil {
		opts = append(opts, decoder.WithRecorder(c.recorder))
	}
	if req.Throttle > 0 {
		opts = append(opts, decoder.WithThrottle(req.Throttle))
	}

	d := decoder.New(resp.Body, onText, opts...)
	text, err := d.Decode(ctx)
	if err != nil {
		return "", fmt.Errorf("decoding completion stream: %w", err)
	}
	completedAt := time.Now()

	stats := d.Stats()
	log.Debug("completion stream finished",
		"duration", completedAt.Sub(startedAt),
		"chars", len(text),
		"chunks", stats.Chunks,
		"callbacks", stats.Callbacks,
	)

	c.publish(ctx, log, req, u.Host, resp.StatusCode, startedAt, completedAt, text, stats)
	return text, nil
}

// publish reports a finished completion. Publishing failures are logged
// and never fail the completion.
func (c *Client) publish(ctx context.Context, log *slog.Logger, req Request, host string, status int, startedAt, completedAt time.Time, text string, stats decoder.Stats) {
	if c.publisher == nil {
		return
	}

	event := eventstream.NewCompletionEvent(
		eventstream.EventSource{
			Host:  host,
			Path:  req.path(),
			Model: req.Model(),
		},
		eventstream.CompletionMeta{
			StartedAt:   startedAt.UTC(),
			CompletedAt: completedAt.UTC(),
			DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
			ThrottleMs:  req.Throttle.Milliseconds(),
			HTTPStatus:  status,
		},
		eventstream.CompletionResult{
			Text:      text,
			Chunks:    stats.Chunks,
			Callbacks: stats.Callbacks,
			Warnings:  stats.Warnings,
		},
	)

	if err := c.publisher.PublishCompletion(ctx, event); err != nil {
		log.Warn("failed to publish completion event", "event_id", event.EventID, "error", err)
	}
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.Body != nil && resp.Body != http.NoBody {
		return nil
	}

	setupErr := &SetupError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		setupErr.Body = utils.Truncate(strings.TrimSpace(string(b)), 512)
	}
	return setupErr
}
