// Package autosave coalesces bursts of field changes into a single
// persistence write once input has been quiet for a fixed period.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formwizard/pkg/form"
)

// DefaultQuietPeriod is the delay between the last change and the write.
const DefaultQuietPeriod = time.Second

// WriteFunc persists a snapshot.
type WriteFunc func(ctx context.Context, record form.Record) error

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(d *Debouncer) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithQuietPeriod overrides the quiet period.
func WithQuietPeriod(quiet time.Duration) Option {
	return func(d *Debouncer) {
		if quiet > 0 {
			d.quiet = quiet
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Debouncer) {
		if log != nil {
			d.log = log
		}
	}
}

// WithOnWrite registers a callback run after every timer-driven write.
func WithOnWrite(fn func(error)) Option {
	return func(d *Debouncer) {
		d.onWrite = fn
	}
}

// Debouncer holds at most one pending snapshot. Each Schedule replaces the
// snapshot and pushes the deadline out by the quiet period; when the
// deadline passes the snapshot is written once.
type Debouncer struct {
	mu      sync.Mutex
	writeMu sync.Mutex

	clock   Clock
	quiet   time.Duration
	write   WriteFunc
	log     *zap.Logger
	onWrite func(error)

	pending    form.Record
	deadline   time.Time
	timer      Timer
	generation uint64
}

// New returns a Debouncer that calls write.
func New(write WriteFunc, opts ...Option) *Debouncer {
	d := &Debouncer{
		clock: SystemClock{},
		quiet: DefaultQuietPeriod,
		write: write,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Schedule replaces the pending snapshot with record and restarts the quiet
// period.
func (d *Debouncer) Schedule(record form.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	gen := d.generation
	d.pending = record.Clone()
	d.deadline = d.clock.Now().Add(d.quiet)
	d.timer = d.clock.AfterFunc(d.quiet, func() {
		d.fire(gen)
	})
}

// Pending returns the waiting snapshot and its deadline.
func (d *Debouncer) Pending() (form.Record, time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return nil, time.Time{}, false
	}
	return d.pending.Clone(), d.deadline, true
}

// Flush writes the pending snapshot now, if any.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	record, ok := d.take(0)
	if !ok {
		return nil
	}
	return d.write(ctx, record)
}

// Cancel drops the pending snapshot. A timer that has already fired but not
// yet written is invalidated, and Cancel waits for a write in progress so
// nothing lands after it returns.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	d.pending = nil
	d.deadline = time.Time{}
	d.mu.Unlock()

	d.writeMu.Lock()
	d.writeMu.Unlock()
}

func (d *Debouncer) fire(gen uint64) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	record, ok := d.take(gen)
	if !ok {
		return
	}
	err := d.write(context.Background(), record)
	if err != nil {
		d.log.Warn("autosave write failed", zap.Error(err))
	} else {
		d.log.Debug("autosave written", zap.Int("fields", len(record)))
	}
	if d.onWrite != nil {
		d.onWrite(err)
	}
}

// take empties the slot. A non-zero gen must match the current generation.
func (d *Debouncer) take(gen uint64) (form.Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != 0 && gen != d.generation {
		return nil, false
	}
	if d.pending == nil {
		return nil, false
	}
	record := d.pending
	d.pending = nil
	d.deadline = time.Time{}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return record, true
}
