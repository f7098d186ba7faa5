package wizard

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/autosave"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Option configures a Controller.
type Option func(*Controller)

// WithValidator overrides the validator built from the schema.
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithSubmitter sets the submission backend. Defaults to submit.Simulated.
func WithSubmitter(s submit.Submitter) Option {
	return func(c *Controller) {
		if s != nil {
			c.submitter = s
		}
	}
}

// WithNotifier sets the sink for user-facing events.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithQuietPeriod sets the autosave debounce delay.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithClock sets the clock used by autosave timers.
func WithClock(clock autosave.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}
