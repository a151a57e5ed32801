package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Frame is the tabular batch handed to stage and unstage: ordered columns,
// string-valued cells. It is a plain value type; Read returns a fresh Frame
// so callers can mutate freely without touching stored state.
type Frame struct {
	columns []string
	rows    []map[string]string
}

func NewFrame(columns ...string) Frame {
	return Frame{columns: append([]string(nil), columns...)}
}

func (f Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f Frame) Has(column string) bool {
	for _, c := range f.columns {
		if c == column {
			return true
		}
	}
	return false
}

func (f Frame) Len() int { return len(f.rows) }

// Column returns the cell values for one column, row order preserved.
// Missing cells yield empty strings.
func (f Frame) Column(name string) []string {
	values := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		values = append(values, row[name])
	}
	return values
}

// Row returns a copy of the row at index i.
func (f Frame) Row(i int) map[string]string {
	row := make(map[string]string, len(f.rows[i]))
	for k, v := range f.rows[i] {
		row[k] = v
	}
	return row
}

// Append adds a row, registering any columns it introduces.
func (f *Frame) Append(row map[string]string) {
	copied := make(map[string]string, len(row))
	for k, v := range row {
		if !f.Has(k) {
			f.columns = append(f.columns, k)
		}
		copied[k] = v
	}
	f.rows = append(f.rows, copied)
}

// UniqueColumn returns the distinct values of a column, first-seen order.
func (f Frame) UniqueColumn(name string) []string {
	seen := make(map[string]struct{}, len(f.rows))
	values := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		v := row[name]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

// MarshalJSON encodes the frame as a records array, one object per row.
func (f Frame) MarshalJSON() ([]byte, error) {
	records := make([]map[string]string, 0, len(f.rows))
	for i := range f.rows {
		records = append(records, f.Row(i))
	}
	return json.Marshal(records)
}

// tenantColumns are checked in priority order; the first present wins.
var tenantColumns = []string{"tenant_id", "tenant.id", "event_data.tenant_id"}

// TenantIDColumn resolves the tenant-identifying column of a frame.
func TenantIDColumn(f Frame) (string, error) {
	for _, name := range tenantColumns {
		if f.Has(name) {
			return name, nil
		}
	}
	return "", ErrMissingTenantColumn
}

// IDColumn names the resource identifier column for an evidence type.
// Event batches carry the identifier as resource_id.
func IDColumn(t Type) string {
	if t == TypeEvent {
		return "resource_id"
	}
	return "id"
}

// LoadFrame reads a JSON records file into a Frame, flattening nested
// objects into dotted column names (tenant -> tenant.id) up to three
// levels, which is how upstream search output is shaped on disk.
func LoadFrame(path string) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, err
	}
	return DecodeFrame(data)
}

// DecodeFrame parses a JSON records array into a Frame.
func DecodeFrame(data []byte) (Frame, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return Frame{}, fmt.Errorf("decode frame records: %w", err)
	}
	return FrameFromRows(records), nil
}

// FrameFromRows flattens decoded result rows into a Frame.
func FrameFromRows(records []map[string]any) Frame {
	var f Frame
	for _, record := range records {
		row := make(map[string]string, len(record))
		flattenInto(row, "", record, 3)

		// Register columns in sorted order for deterministic output.
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !f.Has(k) {
				f.columns = append(f.columns, k)
			}
		}
		f.rows = append(f.rows, row)
	}
	return f
}

func flattenInto(row map[string]string, prefix string, value map[string]any, depth int) {
	for key, v := range value {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		switch typed := v.(type) {
		case map[string]any:
			if depth > 0 {
				flattenInto(row, name, typed, depth-1)
				continue
			}
			encoded, _ := json.Marshal(typed)
			row[name] = string(encoded)
		case nil:
			row[name] = ""
		case string:
			row[name] = typed
		case bool:
			row[name] = strconv.FormatBool(typed)
		case float64:
			row[name] = strconv.FormatFloat(typed, 'f', -1, 64)
		default:
			encoded, _ := json.Marshal(typed)
			row[name] = string(encoded)
		}
	}
}
