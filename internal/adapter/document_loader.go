// Package adapter contains infrastructure adapters for the modulize CLI.
package adapter

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	m "modulize.dev/pkg/modulize/internal/model"
)

// DocumentLoader abstracts how a document set is discovered and loaded so
// the engine can be tested without touching the disk. Loading is
// all-or-nothing: a partial set would produce a partial export table, so
// any failure aborts the batch.
type DocumentLoader interface {
	// Load walks root and returns every JavaScript document under it,
	// keyed by its slash-separated path relative to root, with its
	// cross-document import links resolved to canonical keys.
	Load(ctx context.Context, root m.Path) ([]*m.Document, error)
}

// LocalDocumentLoader is the concrete DocumentLoader backed by the local
// filesystem and a JSFileAdapter.
type LocalDocumentLoader struct {
	js JSFileAdapter
}

// NewLocalDocumentLoader constructs a LocalDocumentLoader.
func NewLocalDocumentLoader(js JSFileAdapter) *LocalDocumentLoader {
	return &LocalDocumentLoader{js: js}
}

// referencePattern matches the triple-slash directive legacy documents use
// to declare a document-level import link.
var referencePattern = regexp.MustCompile(`(?m)^///\s*<reference\s+path="([^"]+)"\s*/>`)

// Load implements DocumentLoader.
func (l *LocalDocumentLoader) Load(ctx context.Context, root m.Path) ([]*m.Document, error) {
	info, err := os.Stat(string(root))
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		doc, err := l.loadFile(ctx, m.Path(filepath.Base(string(root))), string(root))
		if err != nil {
			return nil, err
		}

		return []*m.Document{doc}, nil
	}

	var docs []*m.Document

	err = filepath.Walk(string(root), func(fullPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			base := filepath.Base(fullPath)
			if base == ".git" || base == "vendor" || base == "node_modules" {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(fullPath) != ".js" {
			return nil
		}

		rel, err := filepath.Rel(string(root), fullPath)
		if err != nil {
			return err
		}

		doc, err := l.loadFile(ctx, m.Path(filepath.ToSlash(rel)), fullPath)
		if err != nil {
			return err
		}

		docs = append(docs, doc)

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	return docs, nil
}

func (l *LocalDocumentLoader) loadFile(ctx context.Context, key m.Path, fullPath string) (*m.Document, error) {
	src, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	doc, err := l.js.Parse(ctx, key, src)
	if err != nil {
		return nil, err
	}

	doc.Links = resolveLinks(key, src)

	return doc, nil
}

// resolveLinks extracts reference directives and resolves their targets
// relative to the declaring document's directory.
func resolveLinks(key m.Path, src []byte) []m.Path {
	var links []m.Path

	for _, match := range referencePattern.FindAllSubmatch(src, -1) {
		target := string(match[1])
		if !strings.HasPrefix(target, ".") {
			links = append(links, m.Path(path.Clean(target)))
			continue
		}

		links = append(links, m.Path(path.Clean(path.Join(key.Dir(), target))))
	}

	return links
}
