package throttle

// Option configures a Throttler created with New.
type Option func(*options)

type options struct {
	leading  bool
	trailing bool
}

// WithLeading makes the first call in a quiet window run immediately.
// Disabled by default.
func WithLeading(leading bool) Option {
	return func(o *options) {
		o.leading = leading
	}
}

// WithTrailing controls whether calls made during a window are coalesced
// into one delivery of the latest value when the window ends. Enabled by
// default; disabling it drops calls that arrive mid-window.
func WithTrailing(trailing bool) Option {
	return func(o *options) {
		o.trailing = trailing
	}
}
