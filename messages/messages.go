// Package messages implements reading and writing of JSON locale files.
//
// A locale file is a flat JSON object mapping message keys to strings:
//
//	{
//	    "greeting": "Hello, {name}!",
//	    "farewell": "Goodbye"
//	}
//
// Empty string values mean untranslated. Key order in the file is
// significant and is preserved through parsing, batching, and writing.
package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Entry is a single key/value pair of a locale file.
type Entry struct {
	Key   string
	Value string
}

// Map is an ordered mapping from message key to string value.
// The zero value is not usable; create with New or Parse.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// FromEntries builds a Map from entries in order. Later duplicates
// overwrite the value but keep the first occurrence's position.
func FromEntries(entries []Entry) *Map {
	m := New()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set stores a value. New keys are appended to the iteration order;
// existing keys keep their position.
func (m *Map) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes a key, preserving the order of the remaining keys.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (m *Map) Keys() []string {
	return m.keys
}

// Entries returns all key/value pairs in insertion order.
func (m *Map) Entries() []Entry {
	entries := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, Entry{Key: k, Value: m.values[k]})
	}
	return entries
}

// Stats returns (total, translated, untranslated) counts, where an empty
// string value counts as untranslated.
func (m *Map) Stats() (total, translated, untranslated int) {
	total = len(m.keys)
	for _, k := range m.keys {
		if m.values[k] != "" {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a JSON locale file.
func ParseFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse parses locale JSON data, preserving key order via json.Decoder.
func Parse(data []byte) (*Map, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	m := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		value, ok := vt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string value for key %q, got %T", key, vt)
		}

		m.Set(key, value)
	}

	return m, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile writes the locale file to disk, preserving key order and using
// 2-space indentation.
func (m *Map) WriteFile(path string) error {
	data := m.Marshal()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal produces the JSON output in insertion order with 2-space
// indentation and a trailing newline.
func (m *Map) Marshal() []byte {
	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range m.keys {
		b.WriteString(fmt.Sprintf("  %s: %s", jsonString(k), jsonString(m.values[k])))
		if i < len(m.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// jsonString returns a JSON-encoded string value (with proper escaping).
func jsonString(s string) string {
	return strconv.Quote(s)
}
