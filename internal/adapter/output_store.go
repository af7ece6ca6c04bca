package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	m "modulize.dev/pkg/modulize/internal/model"
)

// OutputStore persists conversion results: generated module files plus an
// optional YAML manifest describing what was produced.
type OutputStore interface {
	// WriteOutputs writes every generated text under dir, preserving the
	// documents' directory structure.
	WriteOutputs(ctx context.Context, dir m.Path, outputs map[m.Path]string) error

	// WriteManifest records the conversion summary at path.
	WriteManifest(ctx context.Context, path m.Path, conversion *m.Conversion) error
}

// LocalOutputStore is the concrete OutputStore backed by the local
// filesystem.
type LocalOutputStore struct{}

// NewLocalOutputStore constructs a LocalOutputStore.
func NewLocalOutputStore() *LocalOutputStore {
	return &LocalOutputStore{}
}

// WriteOutputs implements OutputStore. Files are written in sorted key
// order so repeated runs touch the tree identically.
func (s *LocalOutputStore) WriteOutputs(ctx context.Context, dir m.Path, outputs map[m.Path]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys := make([]m.Path, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		target := filepath.Join(string(dir), filepath.FromSlash(string(key)))

		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}

		if err := os.WriteFile(target, []byte(outputs[key]), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}

	return nil
}

const manifestVersion = 1

type manifestImport struct {
	From  string   `yaml:"from"`
	Kind  string   `yaml:"kind"`
	Names []string `yaml:"names,omitempty"`
	Alias string   `yaml:"alias,omitempty"`
}

type manifestDocument struct {
	Key     string           `yaml:"key"`
	Output  string           `yaml:"output"`
	Exports int              `yaml:"exports"`
	Imports []manifestImport `yaml:"imports,omitempty"`
}

type manifestFlag struct {
	Document string `yaml:"document"`
	Kind     string `yaml:"kind"`
	Path     string `yaml:"path,omitempty"`
	Detail   string `yaml:"detail,omitempty"`
}

type manifest struct {
	Version   int                `yaml:"version"`
	Documents []manifestDocument `yaml:"documents"`
	Flags     []manifestFlag     `yaml:"flags,omitempty"`
}

// WriteManifest implements OutputStore.
func (s *LocalOutputStore) WriteManifest(ctx context.Context, path m.Path, conversion *m.Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := manifest{Version: manifestVersion}

	for _, result := range conversion.Results {
		doc := manifestDocument{
			Key:     string(result.Key),
			Output:  string(result.Output),
			Exports: result.Exports,
		}

		for _, imp := range result.Imports {
			doc.Imports = append(doc.Imports, manifestImport{
				From:  string(imp.From),
				Kind:  importKindLabel(imp.Kind),
				Names: imp.Names,
				Alias: imp.Alias,
			})
		}

		out.Documents = append(out.Documents, doc)
	}

	for _, flag := range conversion.Flags {
		out.Flags = append(out.Flags, manifestFlag{
			Document: string(flag.Document),
			Kind:     string(flag.Kind),
			Path:     flag.Path,
			Detail:   flag.Detail,
		})
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

func importKindLabel(kind m.ImportKind) string {
	switch kind {
	case m.ImportNamed:
		return "named"
	case m.ImportNamespace:
		return "namespace"
	default:
		return "side-effect"
	}
}
