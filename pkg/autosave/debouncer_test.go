package autosave_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/autosave"
	"github.com/goliatone/go-formwizard/pkg/form"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock fires due timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) autosave.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type writes struct {
	mu      sync.Mutex
	records []form.Record
}

func (w *writes) write(_ context.Context, r form.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, r)
	return nil
}

func (w *writes) all() []form.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]form.Record(nil), w.records...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	clock := newFakeClock()
	w := &writes{}
	d := autosave.New(w.write, autosave.WithClock(clock), autosave.WithQuietPeriod(time.Second))

	d.Schedule(form.Record{"email": "a"})
	clock.Advance(600 * time.Millisecond)
	d.Schedule(form.Record{"email": "ab"})
	clock.Advance(600 * time.Millisecond)
	d.Schedule(form.Record{"email": "abc"})

	if got := w.all(); len(got) != 0 {
		t.Fatalf("write happened before quiet period: %v", got)
	}

	_, deadline, ok := d.Pending()
	if !ok || !deadline.Equal(clock.Now().Add(time.Second)) {
		t.Fatalf("unexpected pending deadline %v %v", deadline, ok)
	}

	clock.Advance(time.Second)
	want := []form.Record{{"email": "abc"}}
	if diff := cmp.Diff(want, w.all()); diff != "" {
		t.Fatalf("writes mismatch (-want +got):\n%s", diff)
	}
	if _, _, ok := d.Pending(); ok {
		t.Fatalf("slot not emptied after write")
	}

	clock.Advance(5 * time.Second)
	if len(w.all()) != 1 {
		t.Fatalf("extra writes after quiet period")
	}
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	clock := newFakeClock()
	w := &writes{}
	d := autosave.New(w.write, autosave.WithClock(clock))

	d.Schedule(form.Record{"city": "Lahore"})
	d.Cancel()
	clock.Advance(10 * time.Second)

	if got := w.all(); len(got) != 0 {
		t.Fatalf("cancelled snapshot written: %v", got)
	}
}

func TestDebouncer_StaleTimerIgnored(t *testing.T) {
	clock := newFakeClock()
	w := &writes{}
	d := autosave.New(w.write, autosave.WithClock(clock))

	d.Schedule(form.Record{"city": "Lahore"})
	// capture the timer callback as if it had already been dispatched
	clock.mu.Lock()
	stale := clock.timers[0].fn
	clock.mu.Unlock()

	d.Cancel()
	stale()

	if got := w.all(); len(got) != 0 {
		t.Fatalf("stale timer wrote after cancel: %v", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	clock := newFakeClock()
	w := &writes{}
	var callbacks int
	d := autosave.New(w.write, autosave.WithClock(clock), autosave.WithOnWrite(func(error) { callbacks++ }))

	if err := d.Flush(context.Background()); err != nil || len(w.all()) != 0 {
		t.Fatalf("flush without pending wrote something")
	}

	d.Schedule(form.Record{"a": "1"})
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	clock.Advance(time.Minute)

	if len(w.all()) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(w.all()))
	}
	if callbacks != 0 {
		t.Fatalf("onWrite fires only for timer writes")
	}
}

func TestDebouncer_SnapshotIsolated(t *testing.T) {
	clock := newFakeClock()
	w := &writes{}
	d := autosave.New(w.write, autosave.WithClock(clock))

	rec := form.Record{"skills": []string{"go"}}
	d.Schedule(rec)
	rec["skills"].([]string)[0] = "mutated"
	clock.Advance(time.Second)

	if diff := cmp.Diff([]form.Record{{"skills": []string{"go"}}}, w.all()); diff != "" {
		t.Fatalf("pending snapshot aliased caller data (-want +got):\n%s", diff)
	}
}
