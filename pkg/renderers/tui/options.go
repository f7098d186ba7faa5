package tui

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	WarnPrefix    string
	ErrorPrefix   string
}

// DefaultTheme uses plain ASCII markers.
func DefaultTheme() Theme {
	return Theme{
		InfoPrefix:    "[i] ",
		SuccessPrefix: "[ok] ",
		WarnPrefix:    "[!] ",
		ErrorPrefix:   "[x] ",
	}
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithValidator sets the validator used for inline email and phone checks.
func WithValidator(v *validation.Validator) Option {
	return func(r *Runner) {
		if v != nil {
			r.validator = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithDownloadDir sets where the post-submission download is written.
func WithDownloadDir(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.downloadDir = dir
		}
	}
}

// WithNow overrides the clock used to date downloads.
func WithNow(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}
