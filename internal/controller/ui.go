// Package controller provides output adapters for displaying conversion results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "modulize.dev/pkg/modulize/internal/model"
)

// UI defines the interface for displaying conversion runs.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplaySummary(ctx context.Context, conversion *m.Conversion) error
	DisplayNamespaces(ctx context.Context, namespaces map[string]m.Path) error
	DisplayFlags(ctx context.Context, flags []m.Flag)
	DisplayConcurrencyInfo(ctx context.Context, threads int)
}

// NewUI returns the interactive UI when the output is a terminal and the
// plain one otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the file is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
