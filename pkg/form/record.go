package form

import (
	"fmt"
	"sort"
	"strings"
)

// Record is a snapshot of field values keyed by field key. Values are string,
// []string or bool.
type Record map[string]any

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		if list, ok := value.([]string); ok {
			out[key] = append([]string{}, list...)
			continue
		}
		out[key] = value
	}
	return out
}

// String returns the value stored under key rendered as a string. Lists are
// joined with ", ".
func (r Record) String(key string) string {
	return Stringify(r[key])
}

// Strings returns the value under key as a list. Scalars become a single item
// list; empty or missing values yield nil.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		return toStrings(v)
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}

// Bool reports whether the value under key is a true boolean or the string
// "true".
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "on"
	default:
		return false
	}
}

// Merge returns a new record holding base overlaid with patch. Keys absent in
// patch are preserved.
func Merge(base, patch Record) Record {
	out := make(Record, len(base)+len(patch))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range patch {
		out[key] = value
	}
	return out
}

// IsEmptyValue reports whether value counts as unanswered: nil or the empty
// string. Empty lists and false are answers.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

// Stringify renders a record value for display or serialisation.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		return strings.Join(toStrings(v), ", ")
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

// Normalize coerces decoded values into the Record value shapes: JSON arrays
// become []string, numbers become their string form, and keys listed in
// multiple are always lists.
func Normalize(in map[string]any, multiple ...string) Record {
	out := make(Record, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case []any:
			out[key] = toStrings(v)
		case []string:
			out[key] = append([]string{}, v...)
		case float64:
			out[key] = trimFloat(v)
		case nil, string, bool:
			out[key] = v
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	for _, key := range multiple {
		value, ok := out[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case []string:
		case nil:
			out[key] = []string{}
		case string:
			if v == "" {
				out[key] = []string{}
			} else {
				out[key] = []string{v}
			}
		default:
			out[key] = []string{fmt.Sprint(v)}
		}
	}
	return out
}

func toStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprint(v)
}
