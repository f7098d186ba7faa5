package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/form"
)

// Format selects an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ParseFormat maps a user supplied name to a Format; unknown names fall back
// to JSON.
func ParseFormat(name string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV
	case FormatText:
		return FormatText
	default:
		return FormatJSON
	}
}

// Export serializes the stored record. It returns ErrNoData when nothing is
// stored.
func (p *Persistence) Export(ctx context.Context, format Format) ([]byte, error) {
	data, ok := p.Load(ctx)
	if !ok {
		return nil, ErrNoData
	}
	return Encode(data, format)
}

// Encode serializes record in format. Keys are emitted in sorted order.
func Encode(record form.Record, format Format) ([]byte, error) {
	switch ParseFormat(string(format)) {
	case FormatCSV:
		return []byte(encodeCSV(record)), nil
	case FormatText:
		return []byte(encodeText(record)), nil
	default:
		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("storage: encode json: %w", err)
		}
		return out, nil
	}
}

// every value is quoted; embedded quotes are doubled
func encodeCSV(record form.Record) string {
	keys := record.Keys()
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = `"` + strings.ReplaceAll(form.Stringify(record[key]), `"`, `""`) + `"`
	}
	return strings.Join(keys, ",") + "\n" + strings.Join(values, ",")
}

func encodeText(record form.Record) string {
	var b strings.Builder
	b.WriteString("FORM DATA SUMMARY\n")
	b.WriteString("=================\n\n")
	for _, key := range record.Keys() {
		if b, ok := record[key].(bool); ok && !b {
			continue
		}
		value := form.Stringify(record[key])
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", form.Label(key), value)
	}
	return b.String()
}
