// Package retry re-runs short operations that failed with a transient error,
// mainly storage calls that hit a dropped database connection.
package retry

import (
	"context"
	"time"
)

type options struct {
	attempts  int
	initDelay time.Duration
	step      time.Duration
	retryIf   func(error) bool
	ctx       context.Context
}

type Option func(*options)

// Attempts sets the total number of tries, including the first one.
func Attempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// InitDelay sets the pause before the first repeat.
func InitDelay(d time.Duration) Option {
	return func(o *options) {
		o.initDelay = d
	}
}

// Step is added to the delay after every failed attempt.
func Step(d time.Duration) Option {
	return func(o *options) {
		o.step = d
	}
}

// RetryIf limits repeats to errors the predicate accepts.
func RetryIf(f func(error) bool) Option {
	return func(o *options) {
		o.retryIf = f
	}
}

// Context aborts waiting between attempts when ctx is done.
func Context(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Do runs fn until it succeeds, attempts run out, the predicate rejects the
// error or the context is cancelled. The last error is returned.
func Do(fn func() error, opts ...Option) error {
	o := &options{
		attempts: 1,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}

	var err error
	delay := o.initDelay
	for attempt := 0; attempt < o.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-o.ctx.Done():
				return o.ctx.Err()
			}
			delay += o.step
		}

		if err = fn(); err == nil {
			return nil
		}
		if o.retryIf != nil && !o.retryIf(err) {
			return err
		}
	}

	return err
}
