package domain

import (
	m "modulize.dev/pkg/modulize/internal/model"
)

// refClass says what happens to one reference.
type refClass int

const (
	// refUntouched leaves the expression exactly as written. Unresolved
	// references are not failures: they may be legitimate ambient globals
	// outside the converted set.
	refUntouched refClass = iota
	// refNamed resolves to a single exported name, imported by name when
	// the owner is another document.
	refNamed
	// refNamespace resolves through a whole-namespace binding.
	refNamespace
)

// refDecision carries everything the rewriter needs to rewrite one
// reference use site.
type refDecision struct {
	class refClass
	entry m.ExportEntry
	// rest holds trailing segments that stay as ordinary property access
	// after the matched prefix is replaced.
	rest m.MemberPath
	// alias is the local whole-namespace binding covering the match, when
	// one exists.
	alias string
}

// classifier decides, for a reference inside one document, whether it
// becomes a named import, goes through a namespace binding, or is left
// untouched. The export table is immutable by the time any classifier is
// constructed.
type classifier struct {
	table *m.ExportTable
	self  m.Path
	// aliasByPath maps a namespace member path key to the local name a
	// whole-namespace declaration bound it to.
	aliasByPath map[string]string
}

func newClassifier(table *m.ExportTable, self m.Path) *classifier {
	return &classifier{
		table:       table,
		self:        self,
		aliasByPath: make(map[string]string),
	}
}

// bindNamespaceAlias records a local whole-namespace binding. Later
// references covered by the binding resolve through it instead of turning
// into named imports, so one dependency never gets imported under two
// different shapes.
func (c *classifier) bindNamespaceAlias(path m.MemberPath, local string) {
	c.aliasByPath[path.Key()] = local
}

// namespaceTarget reports whether path resolves exactly to a
// whole-namespace export owned by another document.
func (c *classifier) namespaceTarget(path m.MemberPath) (m.ExportEntry, bool) {
	entry, ok := c.table.Lookup(path)
	if !ok || entry.Kind != m.ExportNamespace || entry.Owner == c.self {
		return m.ExportEntry{}, false
	}

	return entry, true
}

// classify resolves a rooted reference path against the table. A local
// whole-namespace alias covering any prefix of the path takes priority
// over named resolution.
func (c *classifier) classify(path m.MemberPath) refDecision {
	for k := len(path); k >= 1; k-- {
		if local, ok := c.aliasByPath[path[:k].Key()]; ok {
			entry, _ := c.table.Lookup(path[:k])

			return refDecision{
				class: refNamespace,
				entry: entry,
				rest:  path[k:],
				alias: local,
			}
		}
	}

	for k := len(path); k >= 1; k-- {
		entry, ok := c.table.Lookup(path[:k])
		if !ok {
			continue
		}

		if entry.Kind == m.ExportNamespace {
			return refDecision{class: refNamespace, entry: entry, rest: path[k:]}
		}

		return refDecision{class: refNamed, entry: entry, rest: path[k:]}
	}

	return refDecision{class: refUntouched}
}
