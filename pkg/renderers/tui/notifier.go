package tui

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/notify"
)

// Notifier prints wizard notifications through a PromptDriver. Autosave
// confirmations are dropped because timers fire while a prompt is open, and
// field errors are shown next to the field by the Runner instead.
type Notifier struct {
	driver PromptDriver
	theme  Theme
}

// NewNotifier returns a Notifier writing through driver.
func NewNotifier(driver PromptDriver, theme Theme) *Notifier {
	return &Notifier{driver: driver, theme: theme}
}

func (n *Notifier) Notify(note notify.Notification) {
	if n == nil || n.driver == nil {
		return
	}
	switch note.Topic {
	case notify.TopicAutosave, notify.TopicValidation:
		return
	}

	msg := note.Message
	if note.Title != "" {
		msg = note.Title + ": " + msg
	}
	_ = n.driver.Info(context.Background(), n.theme.prefix(note.Kind)+msg)
}

func (t Theme) prefix(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return t.SuccessPrefix
	case notify.KindWarning:
		return t.WarnPrefix
	case notify.KindError:
		return t.ErrorPrefix
	default:
		return t.InfoPrefix
	}
}
