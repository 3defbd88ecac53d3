// Package ui renders the CLI's progress bar, spinners, and confirmation
// prompt, styled with lipgloss/bubbletea.
package ui

// Reporter is how the sender/receiver pipelines surface progress without
// depending on a concrete terminal UI — tests supply a no-op or recording
// implementation.
type Reporter interface {
	// Info prints a one-line status update (registration, negotiation).
	Info(msg string)
	// Progress updates the current percentage complete, 0-100.
	Progress(percent float64)
	// Done reports successful completion with a final summary line.
	Done(summary string)
	// Failed reports a terminal failure.
	Failed(msg string)
}
