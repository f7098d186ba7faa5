// Package form defines the wizard's field taxonomy, the Record snapshot type
// and the field registry the step controller reads and writes through.
//
// A Record maps stable field keys to string, []string or bool values.
// Multi-select groups (Field.Multiple) are always represented as []string so
// callers never have to special-case a single selected option. Records are
// snapshots: Registry.Collect builds a fresh map on every call.
//
// The default five-step schema mirrors the original onboarding form and is
// fixed at compile time; DefaultSchema returns a fresh copy so callers may
// disable fields without affecting other sessions.
package form
