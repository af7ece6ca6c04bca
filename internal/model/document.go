package model

import (
	"path"
	"strings"
)

// Path represents a document key: a slash-separated, extension-bearing
// path relative to the conversion root.
type Path string

// Dir returns the directory portion of the key.
func (p Path) Dir() string {
	return path.Dir(string(p))
}

// WithExt returns the key with its extension replaced.
func (p Path) WithExt(ext string) Path {
	s := string(p)

	return Path(strings.TrimSuffix(s, path.Ext(s)) + ext)
}

// Document is one unit of conversion: its top-level statements plus the
// document-level import links it declares. Loaded once by the loader,
// consumed read-only by the engine.
type Document struct {
	Key        Path
	Statements []Statement
	Links      []Path
	// Header is a comment block standing above the document's scope
	// wrapper, carried over when the wrapper is unwrapped.
	Header string
}
