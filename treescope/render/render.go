// Package render converts scanned directory trees into their nested JSON
// document form: file name -> {"size": ..., "modified_time": ...}, directory
// name -> nested object, empty directory -> {}.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/treescope/treescope/trees"
)

// TreeMap is a JSON object that preserves insertion order, so rendered
// entries keep the traversal's case-insensitive name ordering instead of
// the byte-wise key sort a plain map would get.
type TreeMap struct {
	names  []string
	values map[string]any
}

// NewTreeMap creates an empty ordered object
func NewTreeMap() *TreeMap {
	return &TreeMap{values: make(map[string]any)}
}

// Set adds or replaces a member, keeping first-insertion order
func (m *TreeMap) Set(name string, value any) {
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Get returns the member value for name
func (m *TreeMap) Get(name string) (any, bool) {
	value, ok := m.values[name]
	return value, ok
}

// Len returns the number of members
func (m *TreeMap) Len() int {
	return len(m.names)
}

// MarshalJSON writes the members in insertion order
func (m *TreeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(name)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := marshalNoEscape(m.values[name])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value for %q: %w", name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Tree converts a scanned directory node into its nested object form.
// The object holds the node's contents; the root directory itself does not
// appear as a wrapping entry.
func Tree(node *trees.DirectoryNode, humanReadable bool) *TreeMap {
	out := NewTreeMap()
	if node == nil {
		return out
	}

	type entry struct {
		name  string
		value any
	}
	entries := make([]entry, 0, len(node.Children)+len(node.Files))
	for _, child := range node.Children {
		entries = append(entries, entry{child.Name(), Tree(child, humanReadable)})
	}
	for _, file := range node.Files {
		entries = append(entries, entry{file.Name, FileEntry(file, humanReadable)})
	}

	// Children and files are each sorted already; merge the two runs so the
	// object interleaves them in case-insensitive name order.
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	for _, e := range entries {
		out.Set(e.name, e.value)
	}
	return out
}

// FileEntry converts a file node into its metadata object.
// Files whose metadata could not be read render as {}.
func FileEntry(file *trees.FileNode, humanReadable bool) *TreeMap {
	out := NewTreeMap()
	if file == nil || file.Metadata.NodeType != trees.File {
		return out
	}

	if humanReadable {
		out.Set("size", HumanSize(file.Metadata.Size))
		out.Set("modified_time", HumanTime(file.Metadata.ModifiedAt))
	} else {
		out.Set("size", file.Metadata.Size)
		out.Set("modified_time", file.Metadata.ModifiedAt.Unix())
	}
	return out
}

// ToJSON serializes a rendered tree with 4-space indentation and without
// HTML escaping of entry names.
func ToJSON(v any) ([]byte, error) {
	raw, err := marshalNoEscape(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, fmt.Errorf("failed to indent tree document: %w", err)
	}
	return out.Bytes(), nil
}

// HumanSize converts bytes to a human-readable 1024-based string
// (e.g. "512 B", "1.2 KB", "3.4 MB")
func HumanSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		value /= 1024.0
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
	}
	return fmt.Sprintf("%.1f PB", value/1024.0)
}

// HumanTime converts a timestamp to "YYYY-MM-DD HH:MM" in local time
func HumanTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

