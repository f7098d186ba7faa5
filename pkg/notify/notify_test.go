package notify_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formwizard/pkg/notify"
)

func TestMultiAndRecorder(t *testing.T) {
	first, second := &notify.Recorder{}, &notify.Recorder{}
	n := notify.Multi(first, nil, second)

	n.Notify(notify.New(notify.KindWarning, notify.TopicStorage, "disk full"))
	n.Notify(notify.New(notify.KindInfo, notify.TopicSession, "hello"))

	if len(first.All()) != 2 || len(second.All()) != 2 {
		t.Fatalf("expected both recorders to see 2 notifications")
	}
	storage := first.ByTopic(notify.TopicStorage)
	if len(storage) != 1 || storage[0].DismissAfter != 5*time.Second {
		t.Fatalf("unexpected storage notifications: %+v", storage)
	}
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := notify.NewLogger(zap.New(core))

	l.Notify(notify.New(notify.KindError, notify.TopicSubmission, "boom"))
	l.Notify(notify.Notification{Kind: notify.KindInfo, Topic: notify.TopicValidation, Message: "bad", Field: "email"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel || entries[0].Message != "boom" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ContextMap()["field"] != "email" {
		t.Fatalf("missing field context: %v", entries[1].ContextMap())
	}
}

func TestLoggerInputFeedbackAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := notify.NewLogger(zap.New(core))

	invalid := notify.New(notify.KindError, notify.TopicValidation, "This field is required")
	invalid.Field = "firstName"
	l.Notify(invalid)
	l.Notify(notify.New(notify.KindWarning, notify.TopicAttention, "fix the step"))

	for _, entry := range logs.All() {
		if entry.Level != zap.DebugLevel {
			t.Fatalf("%q logged at %v, want debug", entry.Message, entry.Level)
		}
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
}
