package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	m "modulize.dev/pkg/modulize/internal/model"
)

// documentScan is the phase-1 result for a single document: every export
// entry it contributes plus the statement-level decisions the rewriter
// replays during phase 2.
type documentScan struct {
	doc     *m.Document
	entries []m.ExportEntry
	// byStatement maps a statement index to the entries rendered in its
	// place. For alias indirection the entries land on the declaration
	// statement and the root assignment is dropped.
	byStatement map[int][]m.ExportEntry
	dropped     map[int]bool
	flags       []m.Flag
}

type localDecl struct {
	index int
	stmt  *m.Statement
}

// scanDocument finds every root-object assignment of one document and
// classifies it. It is pure: traversal order within the document is source
// order, and no cross-document state is consulted.
func scanDocument(doc *m.Document, opts m.Options) *documentScan {
	scan := &documentScan{
		doc:         doc,
		byStatement: make(map[int][]m.ExportEntry),
		dropped:     make(map[int]bool),
	}

	locals := make(map[string]localDecl)
	namespaces := make(map[string]bool)
	names := make(map[string]bool)

	for i := range doc.Statements {
		stmt := &doc.Statements[i]

		switch stmt.Kind {
		case m.StmtDeclaration:
			locals[stmt.Decl.Name] = localDecl{index: i, stmt: stmt}
		case m.StmtAssignment:
			scan.classifyAssignment(i, stmt, opts, locals, namespaces, names)
		}
	}

	return scan
}

func (s *documentScan) classifyAssignment(
	index int,
	stmt *m.Statement,
	opts m.Options,
	locals map[string]localDecl,
	namespaces map[string]bool,
	names map[string]bool,
) {
	target := stmt.Assign.Target

	path, rooted, ok := ResolveMemberPath(target, opts.Roots, opts.GlobalAliases)
	if !ok {
		if contains(opts.Roots, InnermostIdent(target)) {
			s.flag(m.FlagStructuralAmbiguity, "", fmt.Sprintf(
				"assignment target %q is not a static member path", target.Text))
		}

		return
	}

	if !rooted {
		return
	}

	rhs := stmt.Assign.Value

	// Annotated namespace object literal assigned straight to the root path.
	if rhs.Kind == m.ExprObject && hasMarker(stmt.Comment, opts.Marker) {
		s.emitNamespace(index, path, rhs, namespaces, names)
		return
	}

	// Indirection: the namespace object was built under a private local
	// name, annotated there, then assigned to the root path for consumers.
	if rhs.Kind == m.ExprIdentifier {
		if local, found := locals[rhs.Name]; found {
			decl := local.stmt.Decl
			if decl.Value != nil && decl.Value.Kind == m.ExprObject && hasMarker(local.stmt.Comment, opts.Marker) {
				s.emitNamespace(local.index, path, decl.Value, namespaces, names)
				s.dropped[index] = true

				return
			}
		}
	}

	// Single top-level property of the root: exported as-is, the right-hand
	// expression text is preserved unchanged.
	if len(path) == 1 {
		s.emitEntry(index, m.ExportEntry{
			Owner: s.doc.Key,
			Path:  path,
			Name:  path[0],
			Kind:  m.ExportValue,
			Value: rhs,
		}, names)

		return
	}

	// Incremental namespace construction: a later property assignment
	// merged into an already established namespace.
	if namespaces[path[:len(path)-1].Key()] {
		kind := m.ExportValue
		if rhs.Kind == m.ExprFunction {
			kind = m.ExportFunction
		}

		s.emitEntry(index, m.ExportEntry{
			Owner: s.doc.Key,
			Path:  path,
			Name:  path[len(path)-1],
			Kind:  kind,
			Value: rhs,
		}, names)
	}
}

// emitNamespace expands an annotated namespace object literal into one
// entry per own property, plus a namespace marker entry so dependents can
// bind the whole export surface. The namespace path itself produces no
// declaration.
func (s *documentScan) emitNamespace(
	index int,
	path m.MemberPath,
	literal *m.Expr,
	namespaces map[string]bool,
	names map[string]bool,
) {
	s.entries = append(s.entries, m.ExportEntry{
		Owner: s.doc.Key,
		Path:  path,
		Name:  path[len(path)-1],
		Kind:  m.ExportNamespace,
	})
	namespaces[path.Key()] = true

	// The statement is consumed even when the literal has no properties:
	// the namespace path itself never produces a declaration.
	if _, converted := s.byStatement[index]; !converted {
		s.byStatement[index] = []m.ExportEntry{}
	}

	for i := range literal.Props {
		prop := &literal.Props[i]
		if prop.Computed || prop.Name == "" {
			s.flag(m.FlagStructuralAmbiguity, path.String(), "namespace property with computed key left unconverted")
			continue
		}

		kind := m.ExportValue

		switch {
		case prop.Method, prop.Value != nil && prop.Value.Kind == m.ExprFunction:
			kind = m.ExportFunction
		case prop.Value != nil && prop.Value.Kind == m.ExprIdentifier:
			kind = m.ExportReference
		}

		s.emitEntry(index, m.ExportEntry{
			Owner: s.doc.Key,
			Path:  path.Child(prop.Name),
			Name:  prop.Name,
			Kind:  kind,
			Value: prop.Value,
		}, names)
	}
}

// emitEntry records one exportable name, enforcing per-document name
// uniqueness. The first occurrence wins; later ones are flagged, never
// silently dropped.
func (s *documentScan) emitEntry(index int, entry m.ExportEntry, names map[string]bool) {
	if names[entry.Name] {
		s.flag(m.FlagDuplicateExport, entry.Path.String(), fmt.Sprintf(
			"name %q is already exported by this document", entry.Name))

		return
	}

	names[entry.Name] = true
	s.entries = append(s.entries, entry)
	s.byStatement[index] = append(s.byStatement[index], entry)
}

func (s *documentScan) flag(kind m.FlagKind, path, detail string) {
	s.flags = append(s.flags, m.Flag{
		Document: s.doc.Key,
		Kind:     kind,
		Path:     path,
		Detail:   detail,
	})
}

func hasMarker(comment, marker string) bool {
	return comment != "" && strings.Contains(comment, marker)
}

// BuildExportTable runs phase 1 over every non-excluded document.
// Per-document scans carry no cross-document dependency and run in
// parallel; the table itself is filled by a single-writer aggregation pass
// in sorted document order so conflicts resolve deterministically.
func BuildExportTable(ctx context.Context, docs []*m.Document, opts m.Options) (*m.ExportTable, []m.Flag, error) {
	included := make([]*m.Document, 0, len(docs))

	for _, doc := range docs {
		if !opts.Excluded(doc.Key) {
			included = append(included, doc)
		}
	}

	sort.Slice(included, func(i, j int) bool {
		return included[i].Key < included[j].Key
	})

	scans := make([]*documentScan, len(included))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Threads)

	for i, doc := range included {
		i, doc := i, doc
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			scans[i] = scanDocument(doc, opts)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("scan documents: %w", err)
	}

	table := m.NewExportTable()

	var flags []m.Flag

	for _, scan := range scans {
		flags = append(flags, scan.flags...)

		for _, entry := range scan.entries {
			if existing, inserted := table.Put(entry); !inserted {
				flags = append(flags, m.Flag{
					Document: entry.Owner,
					Kind:     m.FlagDuplicateExport,
					Path:     entry.Path.String(),
					Detail: fmt.Sprintf("path already exported by %s",
						existing.Owner),
				})
			}
		}
	}

	return table, flags, nil
}
