// Package pathtable holds file contents keyed by workspace path.
package pathtable

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Entry is a single path/content pair
type Entry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Table maps paths to file contents in insertion order.
//
// A Table is never modified once it has been returned; every mutating
// method returns a new Table, so callers may compare pointers to detect
// changes.
type Table struct {
	m *orderedmap.OrderedMap[string, string]
}

// New creates an empty Table
func New() *Table {
	return &Table{m: orderedmap.New[string, string]()}
}

// FromEntries builds a Table from entries. A repeated path keeps its first
// position and its last content.
func FromEntries(entries []Entry) *Table {
	m := orderedmap.New[string, string](len(entries))
	for _, e := range entries {
		m.Set(e.Path, e.Content)
	}
	return &Table{m: m}
}

// Read returns the content stored at path
func (t *Table) Read(path string) (string, bool) {
	return t.m.Get(path)
}

// Has reports whether path has content
func (t *Table) Has(path string) bool {
	_, ok := t.m.Get(path)
	return ok
}

// Len returns the number of paths in the table
func (t *Table) Len() int {
	return t.m.Len()
}

// Write returns a table with content stored at path
func (t *Table) Write(path, content string) *Table {
	if existing, ok := t.m.Get(path); ok && existing == content {
		return t
	}
	next := t.clone()
	next.m.Set(path, content)
	return next
}

// Remove returns a table without path. Removing an absent path returns t.
func (t *Table) Remove(path string) *Table {
	if !t.Has(path) {
		return t
	}
	next := t.clone()
	next.m.Delete(path)
	return next
}

// RemoveTree returns a table without path and every path nested under it,
// together with the removed paths in table order.
func (t *Table) RemoveTree(path string) (*Table, []string) {
	prefix := path + "/"
	var removed []string
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == path || strings.HasPrefix(pair.Key, prefix) {
			removed = append(removed, pair.Key)
		}
	}
	if len(removed) == 0 {
		return t, nil
	}

	next := t.clone()
	for _, p := range removed {
		next.m.Delete(p)
	}
	return next, removed
}

// BulkReplace returns a table holding exactly entries
func (t *Table) BulkReplace(entries []Entry) *Table {
	return FromEntries(entries)
}

// Keys returns the paths in insertion order
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Entries returns the path/content pairs in insertion order
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, Entry{Path: pair.Key, Content: pair.Value})
	}
	return entries
}

// Map returns a plain copy of the table contents
func (t *Table) Map() map[string]string {
	out := make(map[string]string, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON encodes the table as a JSON object, keeping path order
func (t *Table) MarshalJSON() ([]byte, error) {
	return t.m.MarshalJSON()
}

func (t *Table) clone() *Table {
	m := orderedmap.New[string, string](t.m.Len() + 1)
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		m.Set(pair.Key, pair.Value)
	}
	return &Table{m: m}
}
