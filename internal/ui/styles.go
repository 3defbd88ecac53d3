package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette, matching the CLI's accent scheme.
var (
	Primary = lipgloss.Color("#22d3ee")
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	ErrColor = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)

	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrColor).Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)

// PrintSuccess, PrintWarning and PrintError are thin direct-print
// helpers business logic reaches for rather than threading a logger
// through everything.
func PrintSuccess(msg string) { fmt.Println(SuccessStyle.Render("✓"), msg) }
func PrintWarning(msg string) { fmt.Println(WarningStyle.Render("!"), msg) }
func PrintError(msg string)   { fmt.Println(ErrorStyle.Render("✗"), msg) }
