// Package notify carries user-facing wizard events (validation failures,
// storage warnings, submission results) to whichever front end is attached.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Topic groups notifications by what produced them.
type Topic string

const (
	TopicValidation Topic = "validation"
	TopicAttention  Topic = "attention"
	TopicStorage    Topic = "storage"
	TopicAutosave   Topic = "autosave"
	TopicSubmission Topic = "submission"
	TopicSession    Topic = "session"
)

// DismissAfter returns the fixed auto-dismiss delay for kind.
func DismissAfter(kind Kind) time.Duration {
	switch kind {
	case KindWarning, KindError:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

// Notification is a single user-facing event.
type Notification struct {
	Kind         Kind
	Topic        Topic
	Title        string
	Message      string
	Field        string
	DismissAfter time.Duration
}

// New builds a notification with the default dismiss delay for kind.
func New(kind Kind, topic Topic, message string) Notification {
	return Notification{
		Kind:         kind,
		Topic:        topic,
		Message:      message,
		DismissAfter: DismissAfter(kind),
	}
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Nop discards notifications.
var Nop Notifier = NotifierFunc(func(Notification) {})

// Multi fans a notification out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	var out []Notifier
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return NotifierFunc(func(n Notification) {
		for _, target := range out {
			target.Notify(n)
		}
	})
}

// Logger writes notifications to a zap logger.
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps log; a nil logger is replaced with a no-op logger.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

// Notify logs n at a level matching its kind. Validation and attention
// notifications are user input feedback and are logged at debug.
func (l *Logger) Notify(n Notification) {
	fields := []zap.Field{
		zap.String("topic", string(n.Topic)),
		zap.String("kind", string(n.Kind)),
	}
	if n.Field != "" {
		fields = append(fields, zap.String("field", n.Field))
	}
	switch {
	case n.Topic == TopicValidation || n.Topic == TopicAttention:
		l.log.Debug(n.Message, fields...)
	case n.Kind == KindError:
		l.log.Error(n.Message, fields...)
	case n.Kind == KindWarning:
		l.log.Warn(n.Message, fields...)
	default:
		l.log.Info(n.Message, fields...)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// ByTopic returns the recorded notifications for topic.
func (r *Recorder) ByTopic(topic Topic) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Topic == topic {
			out = append(out, n)
		}
	}
	return out
}

// Reset drops recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
