// Package submit delivers a completed form record to its destination.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formwizard/pkg/form"
)

var (
	// ErrRejected reports a destination that refused the record.
	ErrRejected = errors.New("submit: rejected")
	// ErrUnavailable reports a destination that could not be reached or
	// failed on its side.
	ErrUnavailable = errors.New("submit: unavailable")
)

// Status values carried on a Receipt.
const (
	StatusAccepted  = "accepted"
	StatusSimulated = "simulated"
)

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`
}

// Submitter sends a record. Implementations must honour ctx cancellation.
type Submitter interface {
	Submit(ctx context.Context, record form.Record) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, record form.Record) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, record form.Record) (Receipt, error) {
	return f(ctx, record)
}

// Error describes a failed submission after all attempts.
type Error struct {
	Attempts  int
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("submit: failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsRetryable reports whether err is a transient submission failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Retryable
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// AsError wraps err into *Error unless it already is one.
func AsError(err error, attempts int) *Error {
	if err == nil {
		return nil
	}
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	return &Error{Attempts: attempts, Retryable: IsRetryable(err), Err: err}
}
