package decoder

import (
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/textstream/pkg/throttle"
)

const (
	// DefaultReadSize is the buffer size of a single Read from the stream.
	DefaultReadSize = 4 * 1024

	// DefaultMaxCarryBytes bounds a partial payload awaiting its remainder.
	DefaultMaxCarryBytes = 1024 * 1024
)

// Option configures a Decoder.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	interval      time.Duration
	throttleOpts  []throttle.Option
	readSize      int
	maxCarryBytes int
	maxLineBytes  int
	recorder      io.Writer
}

func defaultOptions() *options {
	return &options{
		readSize:      DefaultReadSize,
		maxCarryBytes: DefaultMaxCarryBytes,
	}
}

// WithLogger sets the logger for warnings and session stats.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithThrottle limits text callbacks to one per interval. A zero interval
// leaves callbacks unthrottled.
func WithThrottle(interval time.Duration, opts ...throttle.Option) Option {
	return func(o *options) {
		o.interval = interval
		o.throttleOpts = opts
	}
}

// WithReadSize sets the buffer size used for each Read.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithMaxCarryBytes bounds the partial payload held between lines.
func WithMaxCarryBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCarryBytes = n
		}
	}
}

// WithMaxLineBytes bounds a single line. See sse.DefaultMaxLineBytes.
func WithMaxLineBytes(n int) Option {
	return func(o *options) {
		o.maxLineBytes = n
	}
}

// WithRecorder copies every raw byte read from the stream to w.
func WithRecorder(w io.Writer) Option {
	return func(o *options) {
		o.recorder = w
	}
}
