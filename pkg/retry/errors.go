package retry

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
)

// Aware is implemented by failures that change how the retrier counts the
// attempt that produced them or how long it waits before the next one.
type Aware interface {
	AdjustAttempt(attempt int) int
	AdjustDelay(delay time.Duration) time.Duration
}

// ForceRetryError requests an immediate retry that does not consume the
// attempt budget.
type ForceRetryError struct {
	Err error
}

// ForceRetry wraps err so the retrier retries it for free.
func ForceRetry(err error) *ForceRetryError {
	return &ForceRetryError{Err: err}
}

func (e *ForceRetryError) Error() string {
	return fmt.Sprintf("forcing retry: %v", e.Err)
}

func (e *ForceRetryError) Unwrap() error { return e.Err }

// AdjustAttempt implements Aware.
func (e *ForceRetryError) AdjustAttempt(attempt int) int { return attempt - 1 }

// AdjustDelay implements Aware.
func (e *ForceRetryError) AdjustDelay(time.Duration) time.Duration { return 0 }

// MismatchRetryError requests one more attempt after a failed content
// verification. The attempt is free but the normal delay applies.
type MismatchRetryError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *MismatchRetryError) Error() string {
	return fmt.Sprintf("%s: %v: expected %s, got %s", e.Name, pkgerrors.ErrDigestMismatch, e.Expected, e.Actual)
}

func (e *MismatchRetryError) Unwrap() error { return pkgerrors.ErrDigestMismatch }

// AdjustAttempt implements Aware.
func (e *MismatchRetryError) AdjustAttempt(attempt int) int { return attempt - 1 }

// AdjustDelay implements Aware.
func (e *MismatchRetryError) AdjustDelay(delay time.Duration) time.Duration { return delay }

// IsMismatchRetry reports whether err is a verification retry request.
func IsMismatchRetry(err error) bool {
	var mismatch *MismatchRetryError
	return errors.As(err, &mismatch)
}

// TooManyRetriesError is returned once the attempt budget is exhausted.
// Errors holds every recorded failure in attempt order.
type TooManyRetriesError struct {
	Errors []error
}

func (e *TooManyRetriesError) Error() string {
	if last := e.Last(); last != nil {
		return fmt.Sprintf("%v, cancelling (%d attempts): %v", pkgerrors.ErrTooManyRetries, len(e.Errors), last)
	}
	return fmt.Sprintf("%v, cancelling", pkgerrors.ErrTooManyRetries)
}

// Last returns the failure of the final attempt, or nil.
func (e *TooManyRetriesError) Last() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Unwrap exposes the sentinel and all recorded failures to errors.Is/As.
func (e *TooManyRetriesError) Unwrap() []error {
	return append([]error{pkgerrors.ErrTooManyRetries}, e.Errors...)
}
