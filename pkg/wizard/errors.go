package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/validation"
)

var (
	// ErrNotEditable is returned when a transition is requested while a
	// submission is running or after it completed.
	ErrNotEditable = errors.New("wizard: form is not editable")
	// ErrNotLastStep is returned by Submit before the final step is active.
	ErrNotLastStep = errors.New("wizard: submit is only available on the last step")
	// ErrSuperseded is returned by Submit when Reset ran while it was in
	// flight.
	ErrSuperseded = errors.New("wizard: submission superseded by reset")
	// ErrInvalidConfig reports missing collaborators.
	ErrInvalidConfig = errors.New("wizard: invalid configuration")
)

// StepError carries every validation failure of a step.
type StepError struct {
	Step   int
	Errors []validation.Error
}

func (e *StepError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("wizard: step %d invalid: %s", e.Step, strings.Join(parts, "; "))
}

// Field returns the message for key, if any.
func (e *StepError) Field(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, err := range e.Errors {
		if err.Field == key {
			return err.Message, true
		}
	}
	return "", false
}
