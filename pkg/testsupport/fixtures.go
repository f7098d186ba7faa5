package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

// Now is the fixed instant fixtures are built around.
var Now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// Clock returns a time source pinned to Now.
func Clock() func() time.Time {
	return func() time.Time { return Now }
}

// ValidRecord returns a record that passes every step of the default schema.
func ValidRecord() form.Record {
	return form.Record{
		"firstName":   "Ayesha",
		"lastName":    "Khan",
		"dob":         "1995-03-14",
		"gender":      "female",
		"bio":         "Frontend developer",
		"email":       "ayesha@example.com",
		"phone":       "+92 300 1234567",
		"address":     "12 Mall Road",
		"city":        "Lahore",
		"country":     "pakistan",
		"education":   "bachelors",
		"institution": "FAST",
		"field":       "Computer Science",
		"experience":  "1-3",
		"skills":      []string{"html", "css", "react"},
		"jobRole":     "Frontend Engineer",
		"salary":      "55000",
		"workPref":    "remote",
		"terms":       true,
	}
}

// StepRecord returns the ValidRecord keys that belong to step n.
func StepRecord(n int) form.Record {
	step, ok := form.DefaultSchema().Step(n)
	if !ok {
		return form.Record{}
	}
	all := ValidRecord()
	out := form.Record{}
	for _, field := range step.Fields {
		if v, ok := all[field.Key]; ok {
			out[field.Key] = v
		}
	}
	return out
}

// Registry returns a default-schema registry holding record.
func Registry(t *testing.T, record form.Record) *form.Registry {
	t.Helper()
	reg := form.NewRegistry(form.DefaultSchema())
	for _, key := range record.Keys() {
		if err := reg.Set(key, record[key]); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	return reg
}

// Persistence returns an in-memory Persistence, its store and a notification
// recorder wired to it.
func Persistence(t *testing.T, opts ...storage.Option) (*storage.Persistence, *storage.MemoryKV, *notify.Recorder) {
	t.Helper()
	kv := storage.NewMemoryKV()
	rec := &notify.Recorder{}
	base := []storage.Option{
		storage.WithClock(Clock()),
		storage.WithNotifier(rec),
		storage.WithMultipleKeys(form.DefaultSchema().MultipleKeys()...),
	}
	return storage.New(kv, append(base, opts...)...), kv, rec
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
