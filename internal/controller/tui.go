package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	m "modulize.dev/pkg/modulize/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplaySummary shows the conversion summary, paging it through a viewport
// when it does not fit the terminal.
func (p *TUI) DisplaySummary(ctx context.Context, conversion *m.Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("modulize conversion summary"))
	b.WriteString("\n\n")
	b.WriteString(renderSummaryTable(conversion.Results))

	for _, line := range flagLines(conversion.Flags) {
		b.WriteString(warningStyle.Render(line))
		b.WriteString("\n")
	}

	return p.page(b.String())
}

// DisplayNamespaces shows the member-path to document mapping.
func (p *TUI) DisplayNamespaces(ctx context.Context, namespaces map[string]m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("modulize exports"))
	b.WriteString("\n\n")
	b.WriteString(renderNamespaceTable(namespaces))

	return p.page(b.String())
}

// DisplayFlags prints warnings without paging.
func (p *TUI) DisplayFlags(ctx context.Context, flags []m.Flag) {
	if err := ctx.Err(); err != nil {
		return
	}

	for _, line := range flagLines(flags) {
		fmt.Fprintln(p.output, warningStyle.Render(line))
	}
}

// DisplayConcurrencyInfo shows concurrency settings.
func (p *TUI) DisplayConcurrencyInfo(ctx context.Context, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(p.output, "Converting with %d worker(s)\n", threads)
}

// page prints content directly when it fits the terminal, otherwise it
// runs a scrollable viewport program.
func (p *TUI) page(content string) error {
	width, height := p.terminalSize()

	lines := strings.Count(content, "\n") + 1
	if height == 0 || lines < height {
		_, err := fmt.Fprint(p.output, content)
		return err
	}

	model := newPagerModel(content, width, height)

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (p *TUI) terminalSize() (int, int) {
	f, ok := p.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

// pagerModel is the Bubble Tea model wrapping a viewport over static content.
type pagerModel struct {
	viewport viewport.Model
	quitting bool
}

func newPagerModel(content string, width int, height int) pagerModel {
	// Reserve one line for the help footer.
	vp := viewport.New(width, height-1)
	vp.SetContent(content)

	return pagerModel{viewport: vp}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = msg.Height - 1

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	footer := helpStyle.Render("↑/k: up | ↓/j: down | q: quit")

	return pm.viewport.View() + "\n" + footer
}
