package wizard

import (
	"context"
	"math"
	"time"

	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// StepState marks a step indicator.
type StepState string

const (
	StepCompleted StepState = "completed"
	StepActive    StepState = "active"
	StepPending   StepState = "pending"
)

// StepIndicator is one entry of the step bar.
type StepIndicator struct {
	Number int
	Title  string
	State  StepState
}

// View is the derived state a front end renders.
type View struct {
	Position int
	Total    int
	Title    string
	Phase    Phase

	// Progress is (Position-1)/(Total-1).
	Progress float64
	Percent  int

	ShowNext     bool
	ShowSubmit   bool
	PrevDisabled bool

	Steps  []StepIndicator
	Errors []validation.Error

	SavedProgress int
	LastSaved     time.Time
	HasSaved      bool

	// Review is set while the last step is active.
	Review  *Review
	Receipt submit.Receipt
}

// FieldError returns the message shown under key.
func (v View) FieldError(key string) string {
	for _, err := range v.Errors {
		if err.Field == key {
			return err.Message
		}
	}
	return ""
}

// View computes the derived state for the active step.
func (c *Controller) View(ctx context.Context) View {
	c.mu.Lock()
	position := c.position
	phase := c.phase
	errs := append([]validation.Error(nil), c.errors...)
	receipt := c.receipt
	c.mu.Unlock()

	total := c.schema.Total()
	view := View{
		Position:     position,
		Total:        total,
		Phase:        phase,
		Progress:     progressFraction(position, total),
		ShowNext:     position < total,
		ShowSubmit:   position == total,
		PrevDisabled: position == 1,
		Errors:       errs,
		Receipt:      receipt,
	}
	view.Percent = int(math.Round(view.Progress * 100))

	for _, step := range c.schema.Steps() {
		state := StepPending
		switch {
		case step.Number < position:
			state = StepCompleted
		case step.Number == position:
			state = StepActive
			view.Title = step.Title
		}
		view.Steps = append(view.Steps, StepIndicator{Number: step.Number, Title: step.Title, State: state})
	}

	view.SavedProgress = c.store.Progress(ctx)
	view.LastSaved, view.HasSaved = c.store.LastSaved(ctx)

	if position == total {
		review := BuildReview(c.schema, c.fields.Collect())
		view.Review = &review
	}
	return view
}

func progressFraction(position, total int) float64 {
	if total <= 1 {
		return 1
	}
	return float64(position-1) / float64(total-1)
}
