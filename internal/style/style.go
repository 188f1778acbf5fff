// Package style centralizes the terminal styling shared by the CLI
// driver's prompt/diagnostics and the evaluator's --verbose tracing, so
// both speak the same palette instead of each hand-rolling ANSI codes.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var enabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// SetEnabled overrides the auto-detected terminal check, used by the CLI
// to honor GEKKO_NO_COLOR (a piped stdout is already covered by the
// auto-detection).
func SetEnabled(v bool) { enabled = v }

var (
	Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	Error  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	Trace  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// Render applies s to text, or returns text unchanged when styling is
// disabled (non-terminal stdout, or explicitly turned off).
func Render(s lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return s.Render(text)
}
