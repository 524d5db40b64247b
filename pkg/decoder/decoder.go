// Package decoder turns the event stream of an LLM completion endpoint into
// a growing completion text. A Decoder reads the stream chunk by chunk,
// frames it into lines, parses each line's JSON payload and appends the
// text it carries. The caller's TextFunc sees the accumulated text once per
// chunk that changed it and once more, unconditionally, when the stream
// ends.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/textstream/pkg/logger"
	"github.com/papercomputeco/textstream/pkg/sse"
	"github.com/papercomputeco/textstream/pkg/throttle"
	"github.com/papercomputeco/textstream/pkg/utils"
)

// TextFunc receives the accumulated completion text. A non-nil error aborts
// the decode.
type TextFunc func(ctx context.Context, text string) error

// Stats counts what a decode session processed.
type Stats struct {
	Chunks    int
	Frames    int
	Callbacks int
	Warnings  int
}

// Decoder is a single-use decode session over one stream.
type Decoder struct {
	r      io.Reader
	onText TextFunc
	opts   *options
	logger *slog.Logger
	framer *sse.Framer

	throttler *throttle.Throttler[string]
	emit      TextFunc

	text     string
	carry    string
	hasCarry bool
	used     bool

	chunks    int
	frames    int
	warnings  int
	callbacks atomic.Int64
}

// New creates a Decoder reading from r and reporting text to onText.
// onText may be nil when only the final text is of interest.
func New(r io.Reader, onText TextFunc, opts ...Option) *Decoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	l := o.logger
	if l == nil {
		l = logger.Nop()
	}

	d := &Decoder{
		r:      r,
		onText: onText,
		opts:   o,
		logger: l,
		framer: sse.NewFramer(o.recorder, o.maxLineBytes),
	}

	d.emit = d.call
	if o.interval > 0 {
		d.throttler = throttle.New[string](o.interval, d.call, o.throttleOpts...)
		d.emit = d.throttler.Invoke
	}

	return d
}

// Decode reads r to completion with a new Decoder and returns the final
// text.
func Decode(ctx context.Context, r io.Reader, onText TextFunc, opts ...Option) (string, error) {
	return New(r, onText, opts...).Decode(ctx)
}

// Stats returns the session counters. It is safe to call after Decode
// returns.
func (d *Decoder) Stats() Stats {
	return Stats{
		Chunks:    d.chunks,
		Frames:    d.frames,
		Callbacks: int(d.callbacks.Load()),
		Warnings:  d.warnings,
	}
}

// Decode reads the stream until it ends or a "[DONE]" line arrives and
// returns the accumulated text. On failure it returns "" and the error;
// no terminal callback is made in that case.
func (d *Decoder) Decode(ctx context.Context) (string, error) {
	if d.used {
		return "", ErrDecoderUsed
	}
	d.used = true

	text, err := d.run(ctx)
	if err != nil {
		if d.throttler != nil {
			d.throttler.Cancel()
		}
		d.logger.Debug("decode failed", "error", err, "stats", d.Stats())
		return "", err
	}

	d.logger.Debug("decode finished", "chars", len(text), "stats", d.Stats())
	return text, nil
}

func (d *Decoder) run(ctx context.Context) (string, error) {
	buf := make([]byte, d.opts.readSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, readErr := d.r.Read(buf)
		if n > 0 {
			d.chunks++

			frames, err := d.framer.Feed(buf[:n])
			if err != nil {
				return "", fmt.Errorf("framing stream: %w", err)
			}

			changed, done, err := d.process(frames)
			if err != nil {
				return "", err
			}
			if done {
				return d.finish(ctx)
			}
			if changed {
				if err := d.emit(ctx, d.text); err != nil {
					return "", fmt.Errorf("text callback: %w", err)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("reading stream: %w", readErr)
		}
	}

	// The stream ended without a terminator on its last line.
	if frame, ok := d.framer.Flush(); ok {
		changed, done, err := d.process([]sse.Frame{frame})
		if err != nil {
			return "", err
		}
		if changed && !done {
			if err := d.emit(ctx, d.text); err != nil {
				return "", fmt.Errorf("text callback: %w", err)
			}
		}
	}

	return d.finish(ctx)
}

// process applies the frames of one chunk in order. done is true when the
// "[DONE]" sentinel was seen; frames after it are ignored.
func (d *Decoder) process(frames []sse.Frame) (changed, done bool, err error) {
	for _, frame := range frames {
		d.frames++

		if frame.IsBlank() {
			continue
		}

		_, payload, prefixed := frame.Field()
		if !prefixed {
			if !d.hasCarry {
				return changed, false, &ProtocolError{Line: frame.Raw}
			}
			// Continuation of a payload split over several lines.
			payload = frame.Raw
		}

		if isDone(payload) {
			return changed, true, nil
		}

		if strings.TrimSpace(payload) == "" {
			continue
		}

		c, err := d.consume(payload, prefixed)
		if err != nil {
			return changed, false, err
		}
		changed = changed || c
	}

	return changed, false, nil
}

// consume parses payload, joined to any pending partial payload, and
// appends its text. It reports whether the text grew.
func (d *Decoder) consume(payload string, prefixed bool) (bool, error) {
	candidate := payload
	if d.hasCarry {
		candidate = d.carry + payload
	}

	if gjson.Valid(candidate) {
		d.clearCarry()
		return d.apply(candidate), nil
	}

	if d.hasCarry && prefixed && gjson.Valid(payload) {
		d.warn("dropping partial payload superseded by a complete one", "bytes", len(d.carry))
		d.clearCarry()
		return d.apply(payload), nil
	}

	if len(candidate) > d.opts.maxCarryBytes {
		return false, &IncompleteError{Fragment: candidate}
	}

	d.logger.Debug("holding partial payload", "bytes", len(candidate))
	d.carry = candidate
	d.hasCarry = true
	return false, nil
}

func (d *Decoder) apply(payload string) bool {
	text, ok := extractText(payload)
	if !ok {
		d.warn("unrecognized payload", "payload", utils.Truncate(payload, 200))
		return false
	}
	if text == "" {
		return false
	}

	d.text += text
	return true
}

// finish performs the terminal callback. It runs exactly once per
// successful session, whether the stream ended or "[DONE]" arrived.
func (d *Decoder) finish(ctx context.Context) (string, error) {
	if d.hasCarry {
		return "", &IncompleteError{Fragment: d.carry}
	}

	if err := d.emit(ctx, d.text); err != nil {
		return "", fmt.Errorf("text callback: %w", err)
	}
	if d.throttler != nil {
		if err := d.throttler.Flush(ctx); err != nil {
			return "", fmt.Errorf("text callback: %w", err)
		}
	}

	return d.text, nil
}

func (d *Decoder) clearCarry() {
	d.carry = ""
	d.hasCarry = false
}

func (d *Decoder) warn(msg string, args ...any) {
	d.warnings++
	d.logger.Warn(msg, args...)
}

// call invokes onText and counts the delivery.
func (d *Decoder) call(ctx context.Context, text string) error {
	d.callbacks.Add(1)
	if d.onText == nil {
		return nil
	}
	return d.onText(ctx, text)
}
