package model

import (
	"sort"
	"strings"
)

// MemberPath is an ordered, non-empty qualified access chain with the
// recognized root-object prefix (and any leading global-scope alias)
// already stripped. It never contains a computed segment.
type MemberPath []string

// String renders the path in dotted form.
func (p MemberPath) String() string {
	return strings.Join(p, ".")
}

// Key returns the map key form of the path.
func (p MemberPath) Key() string {
	return strings.Join(p, "\x00")
}

// Equal reports element-wise equality.
func (p MemberPath) Equal(other MemberPath) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// Child returns the path extended by one segment.
func (p MemberPath) Child(name string) MemberPath {
	child := make(MemberPath, 0, len(p)+1)
	child = append(child, p...)

	return append(child, name)
}

// ExportKind classifies how an exported name is declared in output.
type ExportKind int

const (
	// ExportValue becomes `export let name = <original text>;`.
	ExportValue ExportKind = iota
	// ExportFunction becomes `export function name(params) body`.
	ExportFunction
	// ExportReference is a binding initialized to another top-level name.
	ExportReference
	// ExportNamespace marks a whole-namespace entry. It produces no
	// declaration of its own; it exists so dependents can bind the full
	// export surface via a namespace import.
	ExportNamespace
)

// ExportEntry records one exportable name discovered during phase 1.
// Built exclusively by the export table builder, read-only afterward.
type ExportEntry struct {
	Owner Path
	Path  MemberPath
	Name  string
	Kind  ExportKind
	Value *Expr // nil for ExportNamespace
}

// ExportTable maps member paths to export entries across all non-excluded
// documents. It is the single piece of cross-document shared state: built
// once during phase 1, immutable for the rest of the conversion.
type ExportTable struct {
	entries map[string]ExportEntry
}

// NewExportTable returns an empty table.
func NewExportTable() *ExportTable {
	return &ExportTable{entries: make(map[string]ExportEntry)}
}

// Put inserts an entry keyed by its member path. When the path is already
// present the table is left unchanged and the existing entry is returned.
func (t *ExportTable) Put(entry ExportEntry) (ExportEntry, bool) {
	key := entry.Path.Key()
	if existing, ok := t.entries[key]; ok {
		return existing, false
	}

	t.entries[key] = entry

	return entry, true
}

// Lookup returns the entry for an exact member path.
func (t *ExportTable) Lookup(path MemberPath) (ExportEntry, bool) {
	entry, ok := t.entries[path.Key()]

	return entry, ok
}

// Len returns the number of entries.
func (t *ExportTable) Len() int {
	return len(t.entries)
}

// Walk visits entries in sorted path order.
func (t *ExportTable) Walk(fn func(entry ExportEntry)) {
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		fn(t.entries[key])
	}
}
