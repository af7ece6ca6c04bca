package model

// ImportKind distinguishes the two generated import shapes.
type ImportKind int

const (
	// ImportNamed imports a list of specific exported names.
	ImportNamed ImportKind = iota
	// ImportNamespace binds a local alias to a dependency's full export
	// surface.
	ImportNamespace
	// ImportSideEffect imports a dependency for its side effects only.
	ImportSideEffect
)

// ImportSpecifier is one synthesized import declaration of a rewritten
// document: one per distinct dependency actually used.
type ImportSpecifier struct {
	From  Path
	Kind  ImportKind
	Names []string // ImportNamed: local binding names in first-use order
	Alias string   // ImportNamespace: synthetic local alias
}

// FlagKind is the taxonomy of non-fatal per-document conditions.
type FlagKind string

const (
	// FlagStructuralAmbiguity marks an export-producing assignment whose
	// target could not be resolved to a static member path. The statement
	// is emitted unconverted.
	FlagStructuralAmbiguity FlagKind = "structural-ambiguity"
	// FlagDuplicateExport marks a second assignment producing an already
	// exported name. First seen wins.
	FlagDuplicateExport FlagKind = "duplicate-export"
)

// Flag reports a non-fatal condition found while converting a document.
type Flag struct {
	Document Path
	Kind     FlagKind
	Path     string // dotted member path involved, "" when unknown
	Detail   string
}

// Options configures a conversion run.
type Options struct {
	// Roots are the recognized namespace root object names.
	Roots []string
	// GlobalAliases are identifiers denoting the ambient global scope;
	// a leading alias is stripped before root matching.
	GlobalAliases []string
	// Excludes removes documents from the conversion entirely: their
	// exports are invisible and links to them are dropped.
	Excludes map[Path]bool
	// ModuleExt is the output extension replacing the source extension.
	ModuleExt string
	// Marker is the annotation tag identifying reusable namespace object
	// literals in leading comments.
	Marker string
	// Threads bounds per-phase parallelism; values below 1 mean serial.
	Threads int
}

// DefaultGlobalAliases are the conventional ambient-scope names.
var DefaultGlobalAliases = []string{"window", "self", "globalThis"}

const (
	// DefaultModuleExt is the output module extension.
	DefaultModuleExt = ".mjs"
	// DefaultMarker is the namespace annotation tag.
	DefaultMarker = "@namespace"
)

// Normalize fills unset options with defaults.
func (o Options) Normalize() Options {
	if len(o.GlobalAliases) == 0 {
		o.GlobalAliases = DefaultGlobalAliases
	}

	if o.ModuleExt == "" {
		o.ModuleExt = DefaultModuleExt
	}

	if o.Marker == "" {
		o.Marker = DefaultMarker
	}

	if o.Threads < 1 {
		o.Threads = 1
	}

	return o
}

// Excluded reports whether a document key is excluded from conversion.
func (o Options) Excluded(key Path) bool {
	return o.Excludes[key]
}

// DocumentResult summarizes one converted document.
type DocumentResult struct {
	Key     Path
	Output  Path
	Exports int
	Imports []ImportSpecifier
	Flags   []Flag
}

// Conversion is the outcome of a batch run: the output-key → generated-text
// mapping plus everything reported along the way.
type Conversion struct {
	Outputs map[Path]string
	Results []DocumentResult
	Flags   []Flag
}
