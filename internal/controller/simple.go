package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "modulize.dev/pkg/modulize/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySummary prints one row per converted document plus totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, conversion *m.Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(conversion.Results))
	s.DisplayFlags(ctx, conversion.Flags)

	return nil
}

// DisplayNamespaces prints the member-path to document mapping.
func (s *SimpleUI) DisplayNamespaces(ctx context.Context, namespaces map[string]m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderNamespaceTable(namespaces))

	return nil
}

// DisplayFlags prints one warning line per flag.
func (s *SimpleUI) DisplayFlags(ctx context.Context, flags []m.Flag) {
	if err := ctx.Err(); err != nil {
		return
	}

	for _, line := range flagLines(flags) {
		s.printf("%s\n", line)
	}
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Converting with %d worker(s)\n", threads)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderSummaryTable(results []m.DocumentResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Document", "Output", "Exports", "Imports"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	totalExports := 0
	totalImports := 0

	for _, result := range results {
		table.Append([]string{
			string(result.Key),
			string(result.Output),
			fmt.Sprintf("%d", result.Exports),
			fmt.Sprintf("%d", len(result.Imports)),
		})

		totalExports += result.Exports
		totalImports += len(result.Imports)
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Documents %d", len(results)),
		"",
		fmt.Sprintf("%d", totalExports),
		fmt.Sprintf("%d", totalImports),
	})

	table.Render()

	return tableBuffer.String()
}

func renderNamespaceTable(namespaces map[string]m.Path) string {
	paths := make([]string, 0, len(namespaces))
	for path := range namespaces {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Export", "Document"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, path := range paths {
		table.Append([]string{path, string(namespaces[path])})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Exports %d", len(paths)), ""})
	table.Render()

	return tableBuffer.String()
}

func flagLines(flags []m.Flag) []string {
	lines := make([]string, 0, len(flags))

	for _, flag := range flags {
		var b strings.Builder

		fmt.Fprintf(&b, "warning: %s: %s", flag.Document, flag.Kind)

		if flag.Path != "" {
			fmt.Fprintf(&b, " (%s)", flag.Path)
		}

		if flag.Detail != "" {
			fmt.Fprintf(&b, ": %s", flag.Detail)
		}

		lines = append(lines, b.String())
	}

	return lines
}
