// Package wizard drives a multi-step form: it owns the active step, gates
// every forward move on validation, persists snapshots through
// storage.Persistence, debounces autosaves and hands the final record to a
// submit.Submitter.
//
// A Controller is safe for concurrent use. Timers and submissions run on
// their own goroutines; Reset invalidates both so stale work never lands
// after the form was cleared.
package wizard
