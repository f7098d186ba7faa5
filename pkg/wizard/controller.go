package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/autosave"
	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Phase is the lifecycle stage of the form.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

// User-facing messages.
const (
	MessageStepInvalid     = "Please fix the errors on this step before continuing"
	MessageSubmitted       = "Form submitted successfully!"
	MessageSubmitFailed    = "Submission failed. Please try again."
	MessageReset           = "Form reset successfully"
	MessageRestored        = "Loaded saved data"
	MessageAutosaved       = "Saved"
	MessageAlreadyComplete = "This form was already submitted"
)

// Controller owns the step position and every transition of one wizard
// session. Notifiers run while the controller lock is held and must not call
// back into the Controller.
type Controller struct {
	mu sync.Mutex

	schema    *form.Schema
	fields    form.FieldSource
	store     *storage.Persistence
	validator *validation.Validator
	submitter submit.Submitter
	notifier  notify.Notifier
	log       *zap.Logger
	clock     autosave.Clock
	quiet     time.Duration
	autosave  *autosave.Debouncer

	position     int
	phase        Phase
	errors       []validation.Error
	generation   uint64
	cancelSubmit context.CancelFunc
	receipt      submit.Receipt
}

// New builds a Controller positioned on the first step.
func New(schema *form.Schema, fields form.FieldSource, store *storage.Persistence, opts ...Option) (*Controller, error) {
	if schema == nil || schema.Total() == 0 {
		return nil, fmt.Errorf("%w: schema with at least one step required", ErrInvalidConfig)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: field source required", ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: persistence required", ErrInvalidConfig)
	}

	c := &Controller{
		schema:   schema,
		fields:   fields,
		store:    store,
		notifier: notify.Nop,
		log:      zap.NewNop(),
		clock:    autosave.SystemClock{},
		quiet:    autosave.DefaultQuietPeriod,
		position: 1,
		phase:    PhaseEditing,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.validator == nil {
		c.validator = validation.New(schema)
	}
	if c.submitter == nil {
		c.submitter = submit.NewSimulated(0)
	}

	c.autosave = autosave.New(c.store.Save,
		autosave.WithClock(c.clock),
		autosave.WithQuietPeriod(c.quiet),
		autosave.WithLogger(c.log.Named("autosave")),
		autosave.WithOnWrite(c.autosaved),
	)
	return c, nil
}

// Schema returns the step layout.
func (c *Controller) Schema() *form.Schema {
	return c.schema
}

// Position returns the active step number.
func (c *Controller) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Phase returns the lifecycle stage.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CollectSnapshot reads every enabled field.
func (c *Controller) CollectSnapshot() form.Record {
	return c.fields.Collect()
}

// Populate writes record back into the fields. Dependent field listeners
// registered on the source run as values land.
func (c *Controller) Populate(record form.Record) {
	c.fields.Apply(record)
}

// FieldChanged schedules a debounced save of the current snapshot. The
// snapshot is taken and queued under the controller lock so a concurrent
// Reset either cancels it or runs before it is collected.
func (c *Controller) FieldChanged(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Debug("field changed", zap.String("field", key))
	c.autosave.Schedule(c.fields.Collect())
}

// Advance validates the active step, saves the snapshot and moves forward.
// On the last step it saves without moving. Validation failures return a
// *StepError and leave the position unchanged.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseEditing {
		return ErrNotEditable
	}

	record := c.fields.Collect()
	if err := c.checkStep(c.position, record); err != nil {
		return err
	}

	// the explicit save supersedes any queued autosave
	c.autosave.Cancel()
	if err := c.store.Save(ctx, record); err != nil {
		c.log.Warn("step snapshot not persisted", zap.Int("step", c.position), zap.Error(err))
	}

	if c.position < c.schema.Total() {
		c.position++
	}
	c.log.Debug("advanced", zap.Int("step", c.position))
	return nil
}

// Retreat moves one step back without validating or saving. It is a no-op
// on the first step.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseEditing {
		return ErrNotEditable
	}
	if c.position > 1 {
		c.position--
		c.errors = nil
	}
	return nil
}

// Submit validates the last step and sends the record. On success the final
// snapshot is persisted, the form is marked completed and the phase becomes
// PhaseSubmitted. A failed submission restores PhaseEditing and returns a
// *submit.Error.
func (c *Controller) Submit(ctx context.Context) (submit.Receipt, error) {
	c.mu.Lock()
	switch c.phase {
	case PhaseSubmitting, PhaseSubmitted:
		c.mu.Unlock()
		return submit.Receipt{}, ErrNotEditable
	}
	if c.position != c.schema.Total() {
		c.mu.Unlock()
		return submit.Receipt{}, ErrNotLastStep
	}

	record := c.fields.Collect()
	if err := c.checkStep(c.position, record); err != nil {
		c.mu.Unlock()
		return submit.Receipt{}, err
	}

	c.phase = PhaseSubmitting
	gen := c.generation
	subCtx, cancel := context.WithCancel(ctx)
	c.cancelSubmit = cancel
	submitter := c.submitter
	c.mu.Unlock()

	receipt, err := submitter.Submit(subCtx, record)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Info("submission result discarded after reset")
		return submit.Receipt{}, ErrSuperseded
	}
	c.cancelSubmit = nil

	if err != nil {
		c.phase = PhaseEditing
		serr := submit.AsError(err, 1)
		c.log.Error("submission failed",
			zap.Int("attempts", serr.Attempts),
			zap.Bool("retryable", serr.Retryable),
			zap.Error(err),
		)
		n := notify.New(notify.KindError, notify.TopicSubmission, MessageSubmitFailed)
		n.Title = "Submission Error"
		c.notifier.Notify(n)
		return submit.Receipt{}, serr
	}

	c.autosave.Cancel()
	if err := c.store.Save(ctx, record); err != nil {
		c.log.Warn("final snapshot not persisted", zap.Error(err))
	}
	if err := c.store.MarkCompleted(ctx); err != nil {
		c.log.Warn("completion flag not persisted", zap.Error(err))
	}

	c.phase = PhaseSubmitted
	c.receipt = receipt
	c.errors = nil
	c.log.Info("form submitted", zap.String("receipt", receipt.ID), zap.String("status", receipt.Status))
	c.notifier.Notify(notify.New(notify.KindSuccess, notify.TopicSubmission, MessageSubmitted))
	return receipt, nil
}

// Reset asks confirmer for confirmation, then cancels pending autosave and
// any in-flight submission, clears the fields and the store and returns to
// the first step. Callers that do not prompt pass Always(true). It reports
// whether the reset happened.
func (c *Controller) Reset(ctx context.Context, confirmer Confirmer) (bool, error) {
	if confirmer == nil {
		return false, fmt.Errorf("%w: reset requires a confirmer", ErrInvalidConfig)
	}
	ok, err := confirmer.Confirm(ctx, ResetPrompt)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
	c.autosave.Cancel()

	c.fields.Reset()
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn("stored data not cleared", zap.Error(err))
	}

	c.position = 1
	c.phase = PhaseEditing
	c.errors = nil
	c.receipt = submit.Receipt{}

	c.notifier.Notify(notify.New(notify.KindInfo, notify.TopicSession, MessageReset))
	return true, nil
}

// Restore loads the persisted record into the fields. It reports whether
// anything was loaded.
func (c *Controller) Restore(ctx context.Context) bool {
	record, ok := c.store.Load(ctx)
	if !ok || len(record) == 0 {
		return false
	}
	c.Populate(record)
	c.notifier.Notify(notify.New(notify.KindInfo, notify.TopicSession, MessageRestored))
	if c.store.IsCompleted(ctx) {
		c.notifier.Notify(notify.New(notify.KindInfo, notify.TopicSession, MessageAlreadyComplete))
	}
	return true
}

// Export serializes the persisted record in format.
func (c *Controller) Export(ctx context.Context, format storage.Format) ([]byte, error) {
	return c.store.Export(ctx, format)
}

// Close writes any pending autosave.
func (c *Controller) Close(ctx context.Context) error {
	return c.autosave.Flush(ctx)
}

// checkStep validates step n, recording the outcome. Callers hold c.mu.
func (c *Controller) checkStep(n int, record form.Record) error {
	errs := c.validator.ValidateStep(n, record)
	errs = append(errs, c.validator.ValidateConsent(n, record)...)
	c.errors = errs
	if len(errs) == 0 {
		return nil
	}

	for _, e := range errs {
		note := notify.New(notify.KindError, notify.TopicValidation, e.Message)
		note.Field = e.Field
		c.notifier.Notify(note)
	}
	c.notifier.Notify(notify.New(notify.KindWarning, notify.TopicAttention, MessageStepInvalid))
	return &StepError{Step: n, Errors: append([]validation.Error(nil), errs...)}
}

func (c *Controller) autosaved(err error) {
	if err != nil {
		// Persistence already raised the storage warning.
		return
	}
	ctx := context.Background()
	msg := fmt.Sprintf("Progress: %d%% saved", c.store.Progress(ctx))
	if at, ok := c.store.LastSaved(ctx); ok {
		msg += " at " + at.Format("3:04:05 PM")
	}
	n := notify.New(notify.KindSuccess, notify.TopicAutosave, msg)
	n.Title = MessageAutosaved
	c.notifier.Notify(n)
}

// IsStepError reports whether err carries step validation failures.
func IsStepError(err error) (*StepError, bool) {
	var serr *StepError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
