package submit

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/form"
)

// Retry defaults.
const (
	DefaultMaxAttempts     = 3
	DefaultAttemptTimeout  = 10 * time.Second
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
)

// RetryOption configures a Retrying submitter.
type RetryOption func(*Retrying)

// WithMaxAttempts caps the number of attempts.
func WithMaxAttempts(n int) RetryOption {
	return func(r *Retrying) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithAttemptTimeout bounds each attempt.
func WithAttemptTimeout(d time.Duration) RetryOption {
	return func(r *Retrying) {
		if d > 0 {
			r.attemptTimeout = d
		}
	}
}

// WithIntervals sets the exponential backoff bounds.
func WithIntervals(initial, max time.Duration) RetryOption {
	return func(r *Retrying) {
		if initial > 0 {
			r.initial = initial
		}
		if max > 0 {
			r.max = max
		}
	}
}

// WithRetryLogger sets the logger.
func WithRetryLogger(log *zap.Logger) RetryOption {
	return func(r *Retrying) {
		if log != nil {
			r.log = log
		}
	}
}

// Retrying retries transient failures of the wrapped Submitter with
// exponential backoff. Every attempt shares one idempotency key.
type Retrying struct {
	next           Submitter
	maxAttempts    int
	attemptTimeout time.Duration
	initial        time.Duration
	max            time.Duration
	log            *zap.Logger
}

// NewRetrying wraps next.
func NewRetrying(next Submitter, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:           next,
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		initial:        DefaultInitialInterval,
		max:            DefaultMaxInterval,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Submit returns a *Error when every attempt failed or a failure was
// permanent.
func (r *Retrying) Submit(ctx context.Context, record form.Record) (Receipt, error) {
	if IdempotencyKey(ctx) == "" {
		ctx = WithIdempotencyKey(ctx, uuid.NewString())
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initial
	exp.MaxInterval = r.max

	attempts := 0
	op := func() (Receipt, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()

		receipt, err := r.next.Submit(attemptCtx, record)
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil || !IsRetryable(err) {
			return Receipt{}, backoff.Permanent(err)
		}
		return Receipt{}, err
	}

	receipt, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(r.maxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Warn("submission attempt failed",
				zap.Int("attempt", attempts),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
		return Receipt{}, &Error{
			Attempts:  attempts,
			Retryable: ctx.Err() == nil && IsRetryable(err),
			Err:       err,
		}
	}
	return receipt, nil
}
