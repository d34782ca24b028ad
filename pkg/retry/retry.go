// Package retry runs a unit of work until it succeeds or its attempt budget
// is exhausted, classifying failures as fatal, retryable or free retries.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/glorpus-work/shelfsync/internal/logger"
)

// Work is one attempt. previous is the failure of the prior attempt, nil on
// the first call.
type Work func(ctx context.Context, previous error) error

// Sleeper blocks for the given duration.
type Sleeper func(time.Duration)

// Retrier runs work with bounded retries.
type Retrier struct {
	// Debug makes an exhausted retrier return the last raw failure instead
	// of a TooManyRetriesError.
	Debug bool
	Sleep Sleeper
}

// New creates a retrier that sleeps with time.Sleep.
func New(debug bool) *Retrier {
	return &Retrier{Debug: debug, Sleep: time.Sleep}
}

type options struct {
	retryable []error
	fatal     []error
}

// Option customizes a single Retry call.
type Option func(*options)

// Retryable limits retries to failures matching one of errs. Anything else
// propagates immediately.
func Retryable(errs ...error) Option {
	return func(o *options) { o.retryable = append(o.retryable, errs...) }
}

// Fatal makes failures matching one of errs propagate immediately.
func Fatal(errs ...error) Option {
	return func(o *options) { o.fatal = append(o.fatal, errs...) }
}

// Retry calls work until it returns nil or maxAttempts counted failures
// were recorded.
func (r *Retrier) Retry(ctx context.Context, work Work, maxAttempts int, delay time.Duration, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		attempt  int
		thrown   []error
		previous error
	)
	for {
		err := work(ctx, previous)
		if err == nil {
			return nil
		}

		if matchesAny(err, o.fatal) {
			return err
		}
		if o.retryable != nil && !matchesAny(err, o.retryable) {
			return err
		}

		thrown = append(thrown, err)
		attempt++
		wait := delay

		var aware Aware
		if errors.As(err, &aware) {
			attempt = aware.AdjustAttempt(attempt)
			wait = aware.AdjustDelay(wait)
		}

		if attempt >= maxAttempts {
			break
		}

		logger.Debug("Attempt failed, retrying", logger.Fields{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"delay":        wait,
			"error":        err,
		})
		if wait > 0 {
			r.sleep(wait)
		}
		previous = err
	}

	if r.Debug {
		return thrown[len(thrown)-1]
	}
	return &TooManyRetriesError{Errors: thrown}
}

func (r *Retrier) sleep(d time.Duration) {
	if r.Sleep == nil {
		time.Sleep(d)
		return
	}
	r.Sleep(d)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
