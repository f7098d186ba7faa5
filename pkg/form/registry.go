package form

import (
	"fmt"
	"sync"
)

// FieldSource is implemented by whatever layer holds the live field values.
// Collect snapshots every enabled field; Apply writes a record back; Reset
// restores declared defaults.
type FieldSource interface {
	Collect() Record
	Apply(Record)
	Reset()
}

// Listener observes a field after its value changes.
type Listener func(key string, value any)

// Registry is an in-memory FieldSource keyed by field key. It is the single
// place the rendering layer writes user input into.
type Registry struct {
	mu        sync.RWMutex
	schema    *Schema
	values    map[string]any
	disabled  map[string]bool
	listeners map[string][]Listener
}

var _ FieldSource = (*Registry)(nil)

// NewRegistry creates a registry seeded with field defaults.
func NewRegistry(schema *Schema) *Registry {
	if schema == nil {
		schema = DefaultSchema()
	}
	r := &Registry{
		schema:    schema,
		values:    make(map[string]any),
		disabled:  make(map[string]bool),
		listeners: make(map[string][]Listener),
	}
	for _, field := range schema.Fields() {
		r.values[field.Key] = zeroValue(field)
		if field.Disabled {
			r.disabled[field.Key] = true
		}
	}
	return r
}

// Schema returns the schema the registry was built from.
func (r *Registry) Schema() *Schema {
	return r.schema
}

// Accessor returns a typed accessor for key.
func (r *Registry) Accessor(key string) (*Accessor, error) {
	field, ok := r.schema.Field(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return &Accessor{registry: r, field: field}, nil
}

// Get returns the current value for key.
func (r *Registry) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if list, isList := v.([]string); isList {
		return append([]string{}, list...), ok
	}
	return v, ok
}

// Set assigns value to key after coercing it to the field's value shape.
func (r *Registry) Set(key string, value any) error {
	field, ok := r.schema.Field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	coerced, err := coerce(field, value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.values[key] = coerced
	listeners := append([]Listener(nil), r.listeners[key]...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(key, coerced)
	}
	return nil
}

// SetDisabled toggles whether key participates in Collect.
func (r *Registry) SetDisabled(key string, disabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if disabled {
		r.disabled[key] = true
		return
	}
	delete(r.disabled, key)
}

// Watch registers fn to run after key changes through Set, Apply or Reset.
func (r *Registry) Watch(key string, fn Listener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[key] = append(r.listeners[key], fn)
}

// Collect snapshots every enabled field.
func (r *Registry) Collect() Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(Record, len(r.values))
	for _, field := range r.schema.Fields() {
		if r.disabled[field.Key] {
			continue
		}
		value := r.values[field.Key]
		if list, ok := value.([]string); ok {
			value = append([]string{}, list...)
		}
		out[field.Key] = value
	}
	return out
}

// Apply writes every known key of record back into the registry. Choice
// fields keep a value only when it matches an option; multi-select groups
// keep the options contained in the record and clear the rest. Unknown keys
// and values of the wrong shape are skipped.
func (r *Registry) Apply(record Record) {
	for _, key := range record.Keys() {
		field, ok := r.schema.Field(key)
		if !ok {
			continue
		}
		_ = r.Set(field.Key, record[key])
	}
}

// Reset restores every field to its declared default.
func (r *Registry) Reset() {
	for _, field := range r.schema.Fields() {
		_ = r.Set(field.Key, zeroValue(field))
	}
}

// Accessor reads and writes one field of a Registry.
type Accessor struct {
	registry *Registry
	field    Field
}

// Field returns the field metadata.
func (a *Accessor) Field() Field {
	return a.field
}

// Value returns the current value.
func (a *Accessor) Value() any {
	v, _ := a.registry.Get(a.field.Key)
	return v
}

// Set assigns a new value.
func (a *Accessor) Set(value any) error {
	return a.registry.Set(a.field.Key, value)
}

func zeroValue(field Field) any {
	switch {
	case field.Multiple:
		return []string{}
	case field.IsBoolean():
		return false
	default:
		return field.Default
	}
}

func coerce(field Field, value any) (any, error) {
	switch {
	case field.Multiple:
		var items []string
		switch v := value.(type) {
		case []string:
			items = v
		case []any:
			items = toStrings(v)
		case string:
			if v != "" {
				items = []string{v}
			}
		case nil:
		default:
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalidValue, field.Key, value)
		}
		return filterOptions(field.Options, items), nil
	case field.IsBoolean():
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return Record{field.Key: v}.Bool(field.Key), nil
		case nil:
			return false, nil
		default:
			return nil, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, field.Key, value)
		}
	default:
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case nil:
		case []string, []any, map[string]any:
			return nil, fmt.Errorf("%w: %s expects a scalar, got %T", ErrInvalidValue, field.Key, value)
		default:
			s = Stringify(v)
		}
		if field.IsChoice() && s != "" && len(field.Options) > 0 && !contains(field.Options, s) {
			s = ""
		}
		return s, nil
	}
}

func filterOptions(options, items []string) []string {
	out := make([]string, 0, len(items))
	if len(options) == 0 {
		return append(out, items...)
	}
	selected := make(map[string]struct{}, len(items))
	for _, item := range items {
		selected[item] = struct{}{}
	}
	for _, option := range options {
		if _, ok := selected[option]; ok {
			out = append(out, option)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
