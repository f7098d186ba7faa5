package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/storage"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Navigation actions offered after each step.
const (
	ActionNext   = "Next"
	ActionBack   = "Back"
	ActionSubmit = "Submit"
	ActionReset  = "Start over"
	ActionQuit   = "Save & quit"
)

// Actions offered once the form is submitted.
const (
	ActionDownload = "Download"
	ActionNewForm  = "New form"
	ActionDone     = "Done"
)

// Outcome describes how Run ended.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSaved     Outcome = "saved"
)

const progressWidth = 20

// Runner walks a wizard.Controller step by step in the terminal.
type Runner struct {
	ctrl      *wizard.Controller
	fields    *form.Registry
	driver    PromptDriver
	theme     Theme
	validator *validation.Validator
	log       *zap.Logger

	downloadDir string
	now         func() time.Time

	mu      sync.Mutex
	mirrors map[string]string
}

// New builds a Runner over ctrl and the registry backing it.
func New(ctrl *wizard.Controller, fields *form.Registry, opts ...Option) (*Runner, error) {
	if ctrl == nil || fields == nil {
		return nil, ErrNoController
	}
	r := &Runner{
		ctrl:    ctrl,
		fields:  fields,
		theme:   DefaultTheme(),
		log:     zap.NewNop(),
		mirrors: make(map[string]string),

		downloadDir: ".",
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.validator == nil {
		r.validator = validation.New(ctrl.Schema())
	}

	for _, field := range ctrl.Schema().Fields() {
		if field.Type != form.FieldTypeRange {
			continue
		}
		f := field
		fields.Watch(f.Key, func(key string, value any) {
			r.mu.Lock()
			r.mirrors[key] = wizard.FormatValue(f, value)
			r.mu.Unlock()
		})
	}
	return r, nil
}

// Notifier returns a notifier printing through the runner's driver.
func (r *Runner) Notifier() notify.Notifier {
	return NewNotifier(r.driver, r.theme)
}

// Confirm asks a yes/no question; it lets the Runner act as the reset
// confirmer.
func (r *Runner) Confirm(ctx context.Context, message string) (bool, error) {
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Run prompts until the form is submitted or the user saves and quits.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	schema := r.ctrl.Schema()
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		view := r.ctrl.View(ctx)
		if view.Phase == wizard.PhaseSubmitted {
			again, err := r.afterSubmit(ctx, view)
			if err != nil || !again {
				return OutcomeSubmitted, err
			}
			continue
		}

		r.print(ctx, header(view))
		if view.Review != nil {
			if text, err := view.Review.Render(); err != nil {
				r.log.Warn("review not rendered", zap.Error(err))
			} else {
				r.print(ctx, text)
			}
		}

		step, _ := schema.Step(view.Position)
		for _, field := range step.Fields {
			if err := r.promptField(ctx, field, view.FieldError(field.Key)); err != nil {
				return "", err
			}
		}

		action, err := r.chooseAction(ctx, view)
		if err != nil {
			return "", err
		}

		switch action {
		case ActionNext:
			if err := r.ctrl.Advance(ctx); err != nil {
				if _, ok := wizard.IsStepError(err); !ok {
					return "", err
				}
			}
		case ActionBack:
			if err := r.ctrl.Retreat(); err != nil {
				return "", err
			}
		case ActionSubmit:
			if _, err := r.ctrl.Submit(ctx); err != nil && !recoverableSubmit(err) {
				return "", err
			}
		case ActionReset:
			if _, err := r.ctrl.Reset(ctx, r); err != nil {
				return "", translateSurveyErr(err)
			}
		case ActionQuit:
			if err := r.ctrl.Close(ctx); err != nil {
				r.log.Warn("pending changes not saved", zap.Error(err))
			}
			return OutcomeSaved, nil
		}
	}
}

// afterSubmit offers the submitted record for download or a fresh form. It
// reports whether a new form was started.
func (r *Runner) afterSubmit(ctx context.Context, view wizard.View) (bool, error) {
	if view.Receipt.ID != "" {
		r.print(ctx, r.theme.SuccessPrefix+fmt.Sprintf("Receipt %s (%s)", view.Receipt.ID, view.Receipt.Status))
	}
	actions := []string{ActionDownload, ActionNewForm, ActionDone}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: "Form submitted. What next?",
			Options: actions,
		})
		if err != nil {
			return false, translateSurveyErr(err)
		}
		if idx < 0 || idx >= len(actions) {
			idx = len(actions) - 1
		}

		switch actions[idx] {
		case ActionDownload:
			path, err := r.download(ctx)
			if err != nil {
				r.print(ctx, r.theme.ErrorPrefix+"Download failed: "+err.Error())
				continue
			}
			r.print(ctx, r.theme.SuccessPrefix+"Saved "+path)
		case ActionNewForm:
			if _, err := r.ctrl.Reset(ctx, wizard.Always(true)); err != nil {
				return false, err
			}
			return true, nil
		default:
			return false, nil
		}
	}
}

// download writes the stored record as form-data-YYYY-MM-DD.json.
func (r *Runner) download(ctx context.Context) (string, error) {
	data, err := r.ctrl.Export(ctx, storage.FormatJSON)
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.downloadDir, "form-data-"+r.now().Format("2006-01-02")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("tui: write download: %w", err)
	}
	r.log.Info("form data downloaded", zap.String("path", path))
	return path, nil
}

func recoverableSubmit(err error) bool {
	if _, ok := wizard.IsStepError(err); ok {
		return true
	}
	var serr *submit.Error
	return errors.As(err, &serr) || errors.Is(err, wizard.ErrSuperseded)
}

func (r *Runner) chooseAction(ctx context.Context, view wizard.View) (string, error) {
	var actions []string
	if view.ShowSubmit {
		actions = append(actions, ActionSubmit)
	} else {
		actions = append(actions, ActionNext)
	}
	if !view.PrevDisabled {
		actions = append(actions, ActionBack)
	}
	actions = append(actions, ActionReset, ActionQuit)

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "What next?",
		Options:      actions,
		DefaultIndex: 0,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return actions[0], nil
	}
	return actions[idx], nil
}

func (r *Runner) promptField(ctx context.Context, field form.Field, problem string) error {
	current, _ := r.fields.Get(field.Key)
	label := field.DisplayLabel()
	if problem != "" {
		r.print(ctx, r.theme.ErrorPrefix+label+": "+problem)
	}

	var (
		value any
		err   error
	)
	switch {
	case field.Multiple:
		value, err = r.promptMulti(ctx, field, current)
	case field.IsBoolean():
		b, _ := current.(bool)
		value, err = r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: b})
	case field.IsChoice():
		value, err = r.promptChoice(ctx, field, current)
	case field.Type == form.FieldTypeTextArea:
		value, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: form.Stringify(current)})
	default:
		cfg := InputConfig{
			Message: label,
			Default: form.Stringify(current),
			Help:    helpFor(field),
		}
		if field.Type == form.FieldTypeEmail || field.Type == form.FieldTypeTel {
			cfg.Validator = r.inlineCheck(field)
		}
		value, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return translateSurveyErr(err)
	}

	changed := form.Stringify(current) != form.Stringify(value)
	if err := r.fields.Set(field.Key, value); err != nil {
		r.print(ctx, r.theme.WarnPrefix+err.Error())
		return nil
	}
	if changed {
		r.ctrl.FieldChanged(field.Key)
	}

	if field.Type == form.FieldTypeRange {
		r.mu.Lock()
		mirror := r.mirrors[field.Key]
		r.mu.Unlock()
		if mirror != "" {
			r.print(ctx, "  "+label+": "+mirror)
		}
	}
	return nil
}

func (r *Runner) promptMulti(ctx context.Context, field form.Field, current any) ([]string, error) {
	selected := form.Record{field.Key: current}.Strings(field.Key)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  field.DisplayLabel(),
		Options:  field.Options,
		Defaults: indicesOf(field.Options, selected),
	})
	if err != nil {
		return nil, err
	}
	return defaultsFromIndices(field.Options, indices), nil
}

func (r *Runner) promptChoice(ctx context.Context, field form.Field, current any) (string, error) {
	display := make([]string, len(field.Options))
	for i, option := range field.Options {
		display[i] = wizard.FormatValue(field, option)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      display,
		DefaultIndex: indexOf(field.Options, form.Stringify(current)),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(field.Options) {
		return "", nil
	}
	return field.Options[idx], nil
}

func (r *Runner) inlineCheck(field form.Field) func(string) error {
	return func(value string) error {
		if verr := r.validator.ValidateField(field, value); verr != nil {
			return errors.New(verr.Message)
		}
		return nil
	}
}

func (r *Runner) print(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.log.Debug("info not printed", zap.Error(err))
	}
}

func helpFor(field form.Field) string {
	switch {
	case field.Type == form.FieldTypeDate:
		return "Format: YYYY-MM-DD"
	case field.Type == form.FieldTypeTel:
		return "At least 10 digits; spaces, dashes and parentheses are ignored"
	case field.Type == form.FieldTypeRange && field.Max > 0:
		return fmt.Sprintf("Whole dollars between %d and %d", field.Min, field.Max)
	}
	return ""
}

func header(view wizard.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nStep %d of %d: %s\n", view.Position, view.Total, view.Title)

	filled := int(math.Round(view.Progress * progressWidth))
	fmt.Fprintf(&b, "[%s%s] %d%%\n", strings.Repeat("#", filled), strings.Repeat("-", progressWidth-filled), view.Percent)

	marks := make([]string, 0, len(view.Steps))
	for _, step := range view.Steps {
		mark := " "
		switch step.State {
		case wizard.StepCompleted:
			mark = "x"
		case wizard.StepActive:
			mark = ">"
		}
		marks = append(marks, fmt.Sprintf("[%s] %s", mark, step.Title))
	}
	b.WriteString(strings.Join(marks, "  "))

	if view.HasSaved {
		fmt.Fprintf(&b, "\nProgress: %d%% saved at %s", view.SavedProgress, view.LastSaved.Format("3:04 PM"))
	}
	return b.String()
}
