// Package specs normalizes laptop specification records and validates them against a
// Draft-07 JSON Schema.
package specs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Record is one laptop model's specification, keyed by field name.
type Record map[string]any

// Entry pairs a record with its model id.
type Entry struct {
	ID     string
	Record Record
}

// Dataset is an ordered set of records. Keyed datasets came from a JSON object
// (model-id -> record) and are written back the same way.
type Dataset struct {
	Entries []Entry
	Keyed   bool
}

// LoadDataset reads a dataset file.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// DecodeDataset accepts a JSON array of records or a JSON object of model-id -> record.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	switch v := raw.(type) {
	case []any:
		ds := &Dataset{}
		seen := map[string]int{}
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d is %s, want object", i, jsonKind(item))
			}
			id := recordID(m, i)
			seen[id]++
			if n := seen[id]; n > 1 {
				id = fmt.Sprintf("%s#%d", id, n)
			}
			ds.Entries = append(ds.Entries, Entry{ID: id, Record: Record(m)})
		}
		return ds, nil
	case map[string]any:
		ids := make([]string, 0, len(v))
		for id := range v {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		ds := &Dataset{Keyed: true}
		for _, id := range ids {
			m, ok := v[id].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %q is %s, want object", id, jsonKind(v[id]))
			}
			ds.Entries = append(ds.Entries, Entry{ID: id, Record: Record(m)})
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("dataset is %s, want array or object", jsonKind(raw))
	}
}

// MarshalJSON writes the dataset in the shape it was read in.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	if d.Keyed {
		out := make(map[string]Record, len(d.Entries))
		for _, e := range d.Entries {
			out[e.ID] = e.Record
		}
		return json.Marshal(out)
	}
	return json.Marshal(d.Records())
}

// Records returns the records in dataset order.
func (d *Dataset) Records() []Record {
	out := make([]Record, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e.Record)
	}
	return out
}

func recordID(m map[string]any, i int) string {
	for _, key := range []string{"source_pdf", "model"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fmt.Sprintf("record-%d", i+1)
}

// WriteJSONFile writes v as indented JSON via a temp file and rename, so readers
// never observe a partial file.
func WriteJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic replaces path with data.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any, Record:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
