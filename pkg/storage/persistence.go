package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/form"
	"github.com/goliatone/go-formwizard/pkg/notify"
)

// Stored keys.
const (
	KeyData          = "formData"
	KeyDataTimestamp = "formData_timestamp"
	KeyCompleted     = "formCompleted"
	KeyCompletedDate = "formCompleted_date"
)

// DefaultExpectedFields is the denominator of Progress.
const DefaultExpectedFields = 20

// StorageErrorMessage is the text of the storage-degraded warning.
const StorageErrorMessage = "Unable to save data locally. Storage might be unavailable or full."

// Option configures Persistence.
type Option func(*Persistence)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Persistence) {
		if log != nil {
			p.log = log
		}
	}
}

// WithNotifier sets the sink for storage-degraded warnings.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Persistence) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Persistence) {
		if now != nil {
			p.now = now
		}
	}
}

// WithExpectedFields overrides the Progress denominator.
func WithExpectedFields(n int) Option {
	return func(p *Persistence) {
		if n > 0 {
			p.expected = n
		}
	}
}

// WithMultipleKeys lists keys that Load must always return as lists.
func WithMultipleKeys(keys ...string) Option {
	return func(p *Persistence) {
		p.multiple = append([]string(nil), keys...)
	}
}

// Persistence loads, merge-saves and clears the wizard record.
type Persistence struct {
	kv       KV
	log      *zap.Logger
	notifier notify.Notifier
	now      func() time.Time
	expected int
	multiple []string
}

// New wraps kv.
func New(kv KV, opts ...Option) *Persistence {
	p := &Persistence{
		kv:       kv,
		log:      zap.NewNop(),
		notifier: notify.Nop,
		now:      time.Now,
		expected: DefaultExpectedFields,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Save merges partial into the stored record and refreshes the save
// timestamp. On failure the previous data is left as is, a storage warning
// is emitted and the returned error wraps ErrStorage.
func (p *Persistence) Save(ctx context.Context, partial form.Record) error {
	existing, _, err := p.load(ctx)
	if err != nil {
		return p.storageFailure("read", err)
	}
	merged := form.Merge(existing, partial)

	payload, err := json.Marshal(merged)
	if err != nil {
		return p.storageFailure("encode", err)
	}
	if err := p.kv.Set(ctx, KeyData, string(payload)); err != nil {
		return p.storageFailure("save", err)
	}
	stamp := strconv.FormatInt(p.now().UnixMilli(), 10)
	if err := p.kv.Set(ctx, KeyDataTimestamp, stamp); err != nil {
		return p.storageFailure("save timestamp", err)
	}
	p.log.Debug("form data saved", zap.Int("fields", len(merged)))
	return nil
}

// Load returns the stored record. Missing or unparseable data reports false.
func (p *Persistence) Load(ctx context.Context) (form.Record, bool) {
	data, ok, err := p.load(ctx)
	if err != nil {
		p.log.Warn("load form data", zap.Error(err))
		return nil, false
	}
	return data, ok
}

// load only reports store errors; a payload that does not parse is absence.
func (p *Persistence) load(ctx context.Context) (form.Record, bool, error) {
	raw, ok, err := p.kv.Get(ctx, KeyData)
	if err != nil {
		return nil, false, err
	}
	if !ok || raw == "" {
		return nil, false, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		p.log.Debug("discarding unparseable form data", zap.Error(err))
		return nil, false, nil
	}
	if decoded == nil {
		return nil, false, nil
	}
	return form.Normalize(decoded, p.multiple...), true, nil
}

// Progress estimates completion as a percentage of the expected field count.
func (p *Persistence) Progress(ctx context.Context) int {
	data, ok := p.Load(ctx)
	if !ok {
		return 0
	}
	filled := 0
	for _, value := range data {
		if !form.IsEmptyValue(value) {
			filled++
		}
	}
	pct := int(math.Round(float64(filled) / float64(p.expected) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// LastSaved returns the time of the last successful save.
func (p *Persistence) LastSaved(ctx context.Context) (time.Time, bool) {
	raw, ok, err := p.kv.Get(ctx, KeyDataTimestamp)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// MarkCompleted sets the completion flag and date.
func (p *Persistence) MarkCompleted(ctx context.Context) error {
	if err := p.kv.Set(ctx, KeyCompleted, "true"); err != nil {
		return p.storageFailure("mark completed", err)
	}
	if err := p.kv.Set(ctx, KeyCompletedDate, p.now().UTC().Format(time.RFC3339)); err != nil {
		return p.storageFailure("mark completed date", err)
	}
	return nil
}

// IsCompleted reports whether the completion flag is set.
func (p *Persistence) IsCompleted(ctx context.Context) bool {
	raw, ok, err := p.kv.Get(ctx, KeyCompleted)
	return err == nil && ok && raw == "true"
}

// CompletedAt returns the completion date when the flag is set.
func (p *Persistence) CompletedAt(ctx context.Context) (time.Time, bool) {
	if !p.IsCompleted(ctx) {
		return time.Time{}, false
	}
	raw, ok, err := p.kv.Get(ctx, KeyCompletedDate)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clear removes the record, its timestamp and the completion flag.
func (p *Persistence) Clear(ctx context.Context) error {
	if err := p.kv.Delete(ctx, KeyData, KeyDataTimestamp, KeyCompleted, KeyCompletedDate); err != nil {
		return p.storageFailure("clear", err)
	}
	return nil
}

func (p *Persistence) storageFailure(op string, err error) error {
	p.log.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	n := notify.New(notify.KindWarning, notify.TopicStorage, StorageErrorMessage)
	n.Title = "Storage Error"
	p.notifier.Notify(n)
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
