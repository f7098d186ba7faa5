// Package formwizard wires the wizard components into a ready session: it
// opens the configured store, builds the field registry, the submitter and
// the step controller, and tears them down again.
package formwizard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Config aliases the loaded configuration so callers outside the module can
// name it.
type Config = config.Config

// LoadConfig reads defaults, an optional YAML file, .env and the environment.
func LoadConfig(opts ...config.Option) (Config, error) {
	return config.Load(opts...)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return config.Default()
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	log       *zap.Logger
	notifier  notify.Notifier
	submitter submit.Submitter
	schema    *form.Schema
	kv        storage.KV
	wizard    []wizard.Option
}

// WithLogger sets the root logger; components get named children.
func WithLogger(log *zap.Logger) Option {
	return func(o *openOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithNotifier adds a notification sink next to the logging one.
func WithNotifier(n notify.Notifier) Option {
	return func(o *openOptions) {
		o.notifier = n
	}
}

// WithSubmitter replaces the submitter built from the configuration.
func WithSubmitter(s submit.Submitter) Option {
	return func(o *openOptions) {
		o.submitter = s
	}
}

// WithSchema replaces the default five step schema.
func WithSchema(schema *form.Schema) Option {
	return func(o *openOptions) {
		o.schema = schema
	}
}

// WithKV uses kv instead of opening the configured store. Close still closes
// it.
func WithKV(kv storage.KV) Option {
	return func(o *openOptions) {
		o.kv = kv
	}
}

// WithWizardOptions passes extra options to the controller.
func WithWizardOptions(opts ...wizard.Option) Option {
	return func(o *openOptions) {
		o.wizard = append(o.wizard, opts...)
	}
}

// Session is one wired wizard.
type Session struct {
	Config     Config
	Schema     *form.Schema
	Registry   *form.Registry
	Store      *storage.Persistence
	Controller *wizard.Controller
	Log        *zap.Logger

	kv storage.KV
}

// Open builds a Session from cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	o := openOptions{log: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schema := o.schema
	if schema == nil {
		schema = form.DefaultSchema()
	}

	kv := o.kv
	if kv == nil {
		opened, err := storage.Open(ctx, cfg.StoreOptions())
		if err != nil {
			return nil, fmt.Errorf("formwizard: open store: %w", err)
		}
		kv = opened
	}

	notifier := notify.Multi(notify.NewLogger(o.log.Named("notify")), o.notifier)

	store := storage.New(kv,
		storage.WithLogger(o.log.Named("storage")),
		storage.WithNotifier(notifier),
		storage.WithExpectedFields(cfg.Form.ExpectedFields),
		storage.WithMultipleKeys(schema.MultipleKeys()...),
	)

	submitter := o.submitter
	if submitter == nil {
		built, err := NewSubmitter(cfg.Submit, o.log.Named("submit"))
		if err != nil {
			_ = kv.Close()
			return nil, err
		}
		submitter = built
	}

	registry := form.NewRegistry(schema)
	wizardOpts := append([]wizard.Option{
		wizard.WithSubmitter(submitter),
		wizard.WithNotifier(notifier),
		wizard.WithLogger(o.log.Named("wizard")),
		wizard.WithQuietPeriod(cfg.Autosave.QuietPeriod),
	}, o.wizard...)

	ctrl, err := wizard.New(schema, registry, store, wizardOpts...)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	o.log.Debug("session opened",
		zap.String("store", cfg.Store.Driver),
		zap.Bool("simulated_submit", cfg.Submit.Endpoint == ""),
	)

	return &Session{
		Config:     cfg,
		Schema:     schema,
		Registry:   registry,
		Store:      store,
		Controller: ctrl,
		Log:        o.log,
		kv:         kv,
	}, nil
}

// Close flushes pending autosave and releases the store.
func (s *Session) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if err := s.Controller.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("formwizard: close store: %w", err))
	}
	return errors.Join(errs...)
}

// NewSubmitter returns a retrying HTTP submitter when an endpoint is set and
// the simulated one otherwise.
func NewSubmitter(cfg config.SubmitConfig, log *zap.Logger) (submit.Submitter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		return submit.NewSimulated(cfg.SimulatedDelay), nil
	}

	httpSubmitter, err := submit.NewHTTP(cfg.Endpoint,
		submit.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		submit.WithHTTPLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return submit.NewRetrying(httpSubmitter,
		submit.WithMaxAttempts(cfg.MaxAttempts),
		submit.WithAttemptTimeout(cfg.Timeout),
		submit.WithIntervals(cfg.InitialInterval, cfg.MaxInterval),
		submit.WithRetryLogger(log),
	), nil
}
