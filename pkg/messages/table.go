package messages

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps text keys to literal strings.
type Table map[string]string

// Flatten converts a nested document into a Table with dot-separated keys.
func Flatten(doc map[string]any) Table {
	out := make(Table)
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out Table, prefix string, doc map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenInto(out, key, val)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// ParseTable reads a YAML or JSON translation table.
func ParseTable(data []byte) (Table, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse message table: %w", err)
	}
	return Flatten(doc), nil
}

// LoadTable reads a translation table file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read message table %s: %w", path, err)
	}
	return ParseTable(data)
}

// Merge returns a new table with the entries of others layered over t.
func (t Table) Merge(others ...Table) Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Keys returns the table keys, sorted.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the text for key, ignoring blank entries.
func (t Table) Lookup(key string) (string, bool) {
	v, ok := t[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
