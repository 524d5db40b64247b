// Package throttle limits how often a callback is invoked. A Throttler
// delivers at most one call per interval and, when calls arrive faster than
// that, remembers only the latest value and delivers it once the interval
// has elapsed.
//
// Deliveries are serialized: the wrapped function is never invoked
// concurrently with itself, and an older value is never delivered after a
// newer one.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Func is the callback shape a Throttler wraps.
type Func[T any] func(ctx context.Context, v T) error

// Throttler wraps a Func and rate limits its invocation.
type Throttler[T any] struct {
	interval time.Duration
	fn       Func[T]
	leading  bool
	trailing bool
	now      func() time.Time

	mu         sync.Mutex
	last       time.Time
	timer      *time.Timer
	seq        uint64
	hasPending bool
	pending    T
	pendingSeq uint64
	pendingCtx context.Context
	err        error

	// callMu serializes deliveries; delivered is guarded by it.
	callMu    sync.Mutex
	delivered uint64
}

// New creates a Throttler that invokes fn at most once per interval.
// With the default options the first call in a quiet window is deferred
// to the end of the window (trailing edge only).
func New[T any](interval time.Duration, fn Func[T], opts ...Option) *Throttler[T] {
	o := &options{trailing: true}
	for _, opt := range opts {
		opt(o)
	}

	return &Throttler[T]{
		interval: interval,
		fn:       fn,
		leading:  o.leading,
		trailing: o.trailing,
		now:      time.Now,
	}
}

// Interval returns the configured window length.
func (t *Throttler[T]) Interval() time.Duration {
	return t.interval
}

// Func returns Invoke as a value with the same signature as the wrapped
// function.
func (t *Throttler[T]) Func() Func[T] {
	return t.Invoke
}

// Invoke requests a call of the wrapped function with v.
//
// On the leading edge the call happens synchronously and its error is
// returned. Otherwise v replaces any pending value and is delivered when
// the current window elapses. Errors from earlier asynchronous deliveries
// are reported by the next Invoke or Flush.
func (t *Throttler[T]) Invoke(ctx context.Context, v T) error {
	t.mu.Lock()
	if err := t.err; err != nil {
		t.mu.Unlock()
		return err
	}

	t.seq++
	seq := t.seq
	now := t.now()

	if t.leading && t.timer == nil && (t.last.IsZero() || now.Sub(t.last) >= t.interval) {
		t.last = now
		t.mu.Unlock()
		return t.deliver(ctx, seq, v)
	}

	if !t.trailing {
		t.mu.Unlock()
		return nil
	}

	t.hasPending = true
	t.pending = v
	t.pendingSeq = seq
	t.pendingCtx = ctx

	if t.timer == nil {
		wait := t.interval
		if t.leading && !t.last.IsZero() {
			wait = t.interval - now.Sub(t.last)
			if wait < 0 {
				wait = 0
			}
		}
		t.timer = time.AfterFunc(wait, t.fire)
	}
	t.mu.Unlock()

	return nil
}

// Flush stops the pending timer and delivers the pending value, if any,
// synchronously. It waits for a delivery already in flight on the timer
// goroutine and returns the first delivery error seen so far.
func (t *Throttler[T]) Flush(ctx context.Context) error {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	v, seq, ok := t.takePending()
	if ok {
		t.last = t.now()
	}
	t.mu.Unlock()

	if ok {
		if err := t.deliver(ctx, seq, v); err != nil {
			return err
		}
	}

	// Holding callMu waits out a delivery in flight on the timer goroutine.
	t.callMu.Lock()
	defer t.callMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Cancel stops the pending timer and drops the pending value.
func (t *Throttler[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.takePending()
}

// fire runs on the timer goroutine at the end of a window.
func (t *Throttler[T]) fire() {
	t.mu.Lock()
	t.timer = nil
	ctx := t.pendingCtx
	v, seq, ok := t.takePending()
	if !ok {
		t.mu.Unlock()
		return
	}
	t.last = t.now()
	t.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	t.callMu.Lock()
	defer t.callMu.Unlock()

	if err := t.deliverLocked(ctx, seq, v); err != nil {
		t.mu.Lock()
		if t.err == nil {
			t.err = err
		}
		t.mu.Unlock()
	}
}

// takePending must be called with mu held.
func (t *Throttler[T]) takePending() (T, uint64, bool) {
	var zero T
	if !t.hasPending {
		return zero, 0, false
	}

	v, seq := t.pending, t.pendingSeq
	t.hasPending = false
	t.pending = zero
	t.pendingCtx = nil
	return v, seq, true
}

// deliver invokes fn unless a newer value has already been delivered.
func (t *Throttler[T]) deliver(ctx context.Context, seq uint64, v T) error {
	t.callMu.Lock()
	defer t.callMu.Unlock()

	return t.deliverLocked(ctx, seq, v)
}

// deliverLocked must be called with callMu held.
func (t *Throttler[T]) deliverLocked(ctx context.Context, seq uint64, v T) error {
	if seq <= t.delivered {
		return nil
	}
	t.delivered = seq

	return t.fn(ctx, v)
}
