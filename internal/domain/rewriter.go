package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	m "modulize.dev/pkg/modulize/internal/model"
	"modulize.dev/pkg/modulize/pkg"
)

// namedSpec is one named-import binding: the exported name plus the local
// name it is bound to (different only on collision).
type namedSpec struct {
	name  string
	local string
}

// importGroup accumulates what one dependency document contributes to the
// rewritten output. A dependency normally produces either a named list or
// a namespace alias; both at once render as two import lines.
type importGroup struct {
	from  m.Path
	named []namedSpec
	seen  pkg.OrderedSet[string]
	alias string
}

// conversionContext is the per-document transient state of a rewrite: the
// import groups accumulated so far and the local names already taken.
// Created at the start of a document's rewrite, discarded after.
type conversionContext struct {
	doc        *m.Document
	cls        *classifier
	opts       m.Options
	groups     []*importGroup
	groupByDoc map[m.Path]*importGroup
	takenNames map[string]m.Path
	aliasCount int
}

func newConversionContext(doc *m.Document, table *m.ExportTable, opts m.Options) *conversionContext {
	return &conversionContext{
		doc:        doc,
		cls:        newClassifier(table, doc.Key),
		opts:       opts,
		groupByDoc: make(map[m.Path]*importGroup),
		takenNames: make(map[string]m.Path),
	}
}

func (c *conversionContext) group(from m.Path) *importGroup {
	if group, ok := c.groupByDoc[from]; ok {
		return group
	}

	group := &importGroup{from: from, seen: pkg.NewOrderedSet[string]()}
	c.groups = append(c.groups, group)
	c.groupByDoc[from] = group

	return group
}

// importName ensures a named import for the entry and returns the local
// binding name. Two dependencies exporting the same name into one document
// get deterministic $-suffixed aliases.
func (c *conversionContext) importName(entry m.ExportEntry) string {
	group := c.group(entry.Owner)

	if group.seen.Has(entry.Name) {
		for _, spec := range group.named {
			if spec.name == entry.Name {
				return spec.local
			}
		}
	}

	local := entry.Name
	if owner, taken := c.takenNames[local]; taken && owner != entry.Owner {
		suffix := 1
		for {
			candidate := fmt.Sprintf("%s$%d", entry.Name, suffix)
			if _, clash := c.takenNames[candidate]; !clash {
				local = candidate
				break
			}
			suffix++
		}
	}

	c.takenNames[local] = entry.Owner
	group.seen.Add(entry.Name)
	group.named = append(group.named, namedSpec{name: entry.Name, local: local})

	return local
}

// namespaceAlias ensures a namespace import for the entry's owner and
// returns the synthetic alias bound to it.
func (c *conversionContext) namespaceAlias(entry m.ExportEntry) string {
	group := c.group(entry.Owner)
	if group.alias != "" {
		return group.alias
	}

	alias := "$dep"
	if c.aliasCount > 0 {
		alias = fmt.Sprintf("$dep$%d", c.aliasCount)
	}

	c.aliasCount++
	group.alias = alias
	c.takenNames[alias] = entry.Owner

	return alias
}

// edit is one span replacement inside a statement's source text.
type edit struct {
	start, end int
	text       string
}

// RewriteDocument transforms one document's statements into module form
// using the completed export table, producing the generated text plus a
// summary of what was imported and exported.
func RewriteDocument(doc *m.Document, table *m.ExportTable, opts m.Options) (string, m.DocumentResult) {
	opts = opts.Normalize()
	scan := scanDocument(doc, opts)
	ctx := newConversionContext(doc, table, opts)

	// Whole-namespace alias declarations bind before any reference is
	// classified, so later named hits on the same dependency resolve
	// through the alias instead of importing the dependency twice. The
	// dependency's import group is not created here: that happens in the
	// main pass, keeping import lines in first-use order.
	aliasDecls := make(map[int]m.ExportEntry)

	for i := range doc.Statements {
		stmt := &doc.Statements[i]
		if stmt.Kind != m.StmtDeclaration || stmt.Decl.Value == nil {
			continue
		}

		path, rooted, ok := ResolveMemberPath(stmt.Decl.Value, opts.Roots, opts.GlobalAliases)
		if !ok || !rooted {
			continue
		}

		entry, ok := ctx.cls.namespaceTarget(path)
		if !ok {
			continue
		}

		aliasDecls[i] = entry
		ctx.cls.bindNamespaceAlias(path, stmt.Decl.Name)
	}

	var body []string

	for i := range doc.Statements {
		stmt := &doc.Statements[i]

		if scan.dropped[i] {
			continue
		}

		if entries, converted := scan.byStatement[i]; converted {
			edits := ctx.referenceEdits(stmt, nil)
			body = append(body, renderExports(stmt, entries, edits, opts)...)

			continue
		}

		var extra []edit

		skip := span{}
		if entry, ok := aliasDecls[i]; ok {
			alias := ctx.namespaceAlias(entry)
			value := stmt.Decl.Value
			skip = span{value.Start, value.End}
			extra = append(extra, edit{start: value.Start, end: value.End, text: alias})
		}

		edits := append(ctx.referenceEdits(stmt, &skip), extra...)

		text := applyEdits(stmt.Text, edits, 0, len(stmt.Text))
		if stmt.Comment != "" {
			text = stmt.Comment + "\n" + text
		}

		body = append(body, text)
	}

	importLines := ctx.renderImports()
	output := assemble(doc.Header, importLines, body)

	result := m.DocumentResult{
		Key:     doc.Key,
		Output:  doc.Key.WithExt(opts.ModuleExt),
		Imports: ctx.specifiers(),
		Flags:   scan.flags,
	}

	for _, entry := range scan.entries {
		if entry.Kind != m.ExportNamespace {
			result.Exports++
		}
	}

	return output, result
}

type span struct {
	start, end int
}

func (s span) covers(start, end int) bool {
	return s.end > s.start && start >= s.start && end <= s.end
}

// referenceEdits classifies every collected reference of a statement and
// returns the span replacements the rewrite applies. References that fail
// to resolve are left untouched.
func (c *conversionContext) referenceEdits(stmt *m.Statement, skip *span) []edit {
	var edits []edit

	for _, ref := range stmt.Refs {
		if skip != nil && skip.covers(ref.Start, ref.End) {
			continue
		}

		path, rooted, ok := ResolveMemberPath(ref.Expr, c.opts.Roots, c.opts.GlobalAliases)
		if !ok || !rooted {
			continue
		}

		decision := c.cls.classify(path)

		var local string

		switch decision.class {
		case refUntouched:
			continue
		case refNamed:
			if decision.entry.Owner == c.doc.Key {
				local = decision.entry.Name
			} else {
				local = c.importName(decision.entry)
			}
		case refNamespace:
			switch {
			case decision.alias != "":
				local = decision.alias
			case decision.entry.Owner == c.doc.Key:
				continue
			default:
				local = c.namespaceAlias(decision.entry)
			}
		}

		text := local
		if len(decision.rest) > 0 {
			text += "." + decision.rest.String()
		}

		edits = append(edits, edit{start: ref.Start, end: ref.End, text: text})
	}

	return edits
}

// renderExports replaces an export-producing statement with its export
// declarations. Function-valued members become named function declarations
// with parameter and body text copied verbatim; everything else becomes an
// exported binding initialized to the unchanged right-hand text.
func renderExports(stmt *m.Statement, entries []m.ExportEntry, edits []edit, opts m.Options) []string {
	var lines []string

	if stmt.Comment != "" && !hasMarker(stmt.Comment, opts.Marker) {
		lines = append(lines, stmt.Comment)
	}

	for _, entry := range entries {
		if entry.Kind == m.ExportNamespace || entry.Value == nil {
			continue
		}

		value := entry.Value

		if entry.Kind == m.ExportFunction {
			params := value.Params
			if params != "" {
				params = applyEdits(stmt.Text, edits, value.ParamsStart, value.ParamsStart+len(params))
			}

			bodyStart := value.End - len(value.Body)
			body := applyEdits(stmt.Text, edits, bodyStart, value.End)
			lines = append(lines, "export function "+entry.Name+params+" "+body)

			continue
		}

		text := applyEdits(stmt.Text, edits, value.Start, value.End)
		lines = append(lines, "export let "+entry.Name+" = "+text+";")
	}

	return lines
}

// applyEdits returns the [start,end) slice of text with every edit falling
// inside the window applied, later spans first so earlier offsets stay
// valid.
func applyEdits(text string, edits []edit, start, end int) string {
	window := edits[:0:0]

	for _, e := range edits {
		if e.start >= start && e.end <= end {
			window = append(window, e)
		}
	}

	sort.Slice(window, func(i, j int) bool {
		return window[i].start > window[j].start
	})

	out := text[start:end]

	for _, e := range window {
		out = out[:e.start-start] + e.text + out[e.end-start:]
	}

	return out
}

// renderImports produces one import line per dependency in order of first
// use, followed by side-effect imports for the document links that were
// never referenced by name. Links to excluded documents are dropped.
func (c *conversionContext) renderImports() []string {
	var lines []string

	for _, group := range c.groups {
		source := importSource(c.doc.Key, group.from, c.opts.ModuleExt)

		if group.alias != "" {
			lines = append(lines, "import * as "+group.alias+" from '"+source+"';")
		}

		if len(group.named) > 0 {
			specs := make([]string, 0, len(group.named))
			for _, spec := range group.named {
				if spec.local == spec.name {
					specs = append(specs, spec.name)
				} else {
					specs = append(specs, spec.name+" as "+spec.local)
				}
			}

			lines = append(lines, "import { "+strings.Join(specs, ", ")+" } from '"+source+"';")
		}
	}

	for _, link := range c.doc.Links {
		if c.opts.Excluded(link) {
			continue
		}

		if _, used := c.groupByDoc[link]; used {
			continue
		}

		lines = append(lines, "import '"+importSource(c.doc.Key, link, c.opts.ModuleExt)+"';")
	}

	return lines
}

func (c *conversionContext) specifiers() []m.ImportSpecifier {
	var specs []m.ImportSpecifier

	for _, group := range c.groups {
		if group.alias != "" {
			specs = append(specs, m.ImportSpecifier{
				From:  group.from,
				Kind:  m.ImportNamespace,
				Alias: group.alias,
			})
		}

		if len(group.named) > 0 {
			names := make([]string, 0, len(group.named))
			for _, spec := range group.named {
				names = append(names, spec.local)
			}

			specs = append(specs, m.ImportSpecifier{
				From:  group.from,
				Kind:  m.ImportNamed,
				Names: names,
			})
		}
	}

	for _, link := range c.doc.Links {
		if c.opts.Excluded(link) {
			continue
		}

		if _, used := c.groupByDoc[link]; used {
			continue
		}

		specs = append(specs, m.ImportSpecifier{From: link, Kind: m.ImportSideEffect})
	}

	return specs
}

// importSource derives the module specifier for an import: the dependency's
// output key relative to the importing document's directory.
func importSource(from, dep m.Path, ext string) string {
	rel, err := filepath.Rel(from.Dir(), string(dep.WithExt(ext)))
	if err != nil {
		return string(dep.WithExt(ext))
	}

	source := filepath.ToSlash(rel)
	if !strings.HasPrefix(source, "../") {
		source = "./" + source
	}

	return source
}

func assemble(header string, importLines, body []string) string {
	var out strings.Builder

	if header != "" {
		out.WriteString(header)
		out.WriteString("\n")
	}

	if len(importLines) > 0 {
		out.WriteString(strings.Join(importLines, "\n"))
		out.WriteString("\n")

		if len(body) > 0 {
			out.WriteString("\n")
		}
	}

	if len(body) > 0 {
		out.WriteString(strings.Join(body, "\n"))
		out.WriteString("\n")
	}

	return out.String()
}
