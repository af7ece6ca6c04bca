package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	m "modulize.dev/pkg/modulize/internal/model"
)

// Converter drives the two-phase conversion: export discovery over the
// whole document set, then per-document rewriting against the completed
// table. No document's rewrite begins before phase 1 has seen the entire
// set, because any document may reference exports declared by one visited
// later.
type Converter interface {
	// Convert runs both phases over a document set and returns the
	// output-key to generated-text mapping.
	Convert(ctx context.Context, docs []*m.Document, opts m.Options) (*m.Conversion, error)

	// Scan runs phase 1 only, for tooling that wants to inspect exports
	// without materializing any output.
	Scan(ctx context.Context, docs []*m.Document, opts m.Options) (*m.ExportTable, []m.Flag, error)

	// ConvertDocument converts one document incrementally: its exports
	// join the engine's shared table and its generated text is recorded,
	// so later documents can import from it.
	ConvertDocument(ctx context.Context, doc *m.Document) error

	// Namespaces exposes the current member-path to exporting-document
	// mapping, read-only.
	Namespaces() map[string]m.Path

	// Outputs returns a copy of the generated texts recorded so far.
	Outputs() map[m.Path]string

	// Flags returns a copy of every flag recorded so far, including those
	// raised by incremental ConvertDocument calls.
	Flags() []m.Flag
}

type converter struct {
	mu      sync.RWMutex
	opts    m.Options
	table   *m.ExportTable
	outputs map[m.Path]string
	flags   []m.Flag
}

// NewConverter constructs a Converter with the given options. Roots must
// name at least one namespace root object.
func NewConverter(opts m.Options) Converter {
	return &converter{
		opts:    opts.Normalize(),
		table:   m.NewExportTable(),
		outputs: make(map[m.Path]string),
	}
}

func validateOptions(opts m.Options) error {
	if len(opts.Roots) == 0 {
		return fmt.Errorf("missing namespace root names")
	}

	return nil
}

func (c *converter) Convert(ctx context.Context, docs []*m.Document, opts m.Options) (*m.Conversion, error) {
	opts = c.merged(opts)
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	table, flags, err := BuildExportTable(ctx, docs, opts)
	if err != nil {
		return nil, fmt.Errorf("build export table: %w", err)
	}

	c.mu.Lock()
	c.table = table
	c.flags = flags
	c.mu.Unlock()

	included := make([]*m.Document, 0, len(docs))

	for _, doc := range docs {
		if !opts.Excluded(doc.Key) {
			included = append(included, doc)
		}
	}

	sort.Slice(included, func(i, j int) bool {
		return included[i].Key < included[j].Key
	})

	// Phase 2: each rewrite reads the immutable table and writes only its
	// own slot.
	texts := make([]string, len(included))
	results := make([]m.DocumentResult, len(included))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Threads)

	for i, doc := range included {
		i, doc := i, doc
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			texts[i], results[i] = RewriteDocument(doc, table, opts)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("rewrite documents: %w", err)
	}

	conversion := &m.Conversion{
		Outputs: make(map[m.Path]string, len(included)),
		Results: results,
		Flags:   flags,
	}

	c.mu.Lock()
	for i, result := range results {
		conversion.Outputs[result.Output] = texts[i]
		c.outputs[result.Output] = texts[i]
	}
	c.mu.Unlock()

	slog.Debug("conversion complete",
		"documents", len(included), "exports", table.Len(), "flags", len(flags))

	return conversion, nil
}

func (c *converter) Scan(ctx context.Context, docs []*m.Document, opts m.Options) (*m.ExportTable, []m.Flag, error) {
	opts = c.merged(opts)
	if err := validateOptions(opts); err != nil {
		return nil, nil, err
	}

	table, flags, err := BuildExportTable(ctx, docs, opts)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.table = table
	c.flags = flags
	c.mu.Unlock()

	return table, flags, nil
}

// ConvertDocument folds one document into the shared engine state. Earlier
// conversions' exports are visible to it; its own exports become visible
// to later calls. Callers that need full cross-document resolution should
// prefer Convert, which sees the whole set before rewriting.
func (c *converter) ConvertDocument(ctx context.Context, doc *m.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := validateOptions(c.opts); err != nil {
		return err
	}

	if c.opts.Excluded(doc.Key) {
		return nil
	}

	scan := scanDocument(doc, c.opts)

	c.mu.Lock()

	for _, entry := range scan.entries {
		if existing, inserted := c.table.Put(entry); !inserted {
			c.flags = append(c.flags, m.Flag{
				Document: entry.Owner,
				Kind:     m.FlagDuplicateExport,
				Path:     entry.Path.String(),
				Detail:   fmt.Sprintf("path already exported by %s", existing.Owner),
			})
		}
	}

	c.flags = append(c.flags, scan.flags...)
	table := c.table
	c.mu.Unlock()

	text, result := RewriteDocument(doc, table, c.opts)

	c.mu.Lock()
	c.outputs[result.Output] = text
	c.mu.Unlock()

	return nil
}

func (c *converter) Namespaces() map[string]m.Path {
	c.mu.RLock()
	defer c.mu.RUnlock()

	namespaces := make(map[string]m.Path)

	c.table.Walk(func(entry m.ExportEntry) {
		namespaces[entry.Path.String()] = entry.Owner
	})

	return namespaces
}

func (c *converter) Outputs() map[m.Path]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	outputs := make(map[m.Path]string, len(c.outputs))
	for key, text := range c.outputs {
		outputs[key] = text
	}

	return outputs
}

func (c *converter) Flags() []m.Flag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flags := make([]m.Flag, len(c.flags))
	copy(flags, c.flags)

	return flags
}

// merged overlays per-call options on the engine defaults. Zero-valued
// fields fall back to the engine's construction-time options.
func (c *converter) merged(opts m.Options) m.Options {
	if len(opts.Roots) == 0 {
		opts.Roots = c.opts.Roots
	}

	if len(opts.GlobalAliases) == 0 {
		opts.GlobalAliases = c.opts.GlobalAliases
	}

	if opts.Excludes == nil {
		opts.Excludes = c.opts.Excludes
	}

	if opts.ModuleExt == "" {
		opts.ModuleExt = c.opts.ModuleExt
	}

	if opts.Marker == "" {
		opts.Marker = c.opts.Marker
	}

	if opts.Threads < 1 {
		opts.Threads = c.opts.Threads
	}

	return opts.Normalize()
}
