package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ProgramReporter drives a bubbletea ProgressModel, satisfying Reporter.
type ProgramReporter struct {
	program *tea.Program
}

// NewProgramReporter creates a bubbletea program rendering label's progress.
// Run must be called (typically in its own goroutine) to start and pump the UI.
func NewProgramReporter(label string) *ProgramReporter {
	return &ProgramReporter{program: tea.NewProgram(NewProgressModel(label))}
}

// Run blocks pumping the bubbletea event loop; call in its own goroutine.
func (p *ProgramReporter) Run() error {
	_, err := p.program.Run()
	return err
}

func (p *ProgramReporter) Info(msg string) {
	// Informational lines precede the progress bar's own lifecycle and
	// are printed directly rather than routed through bubbletea.
	PrintSuccess(msg)
}

func (p *ProgramReporter) Progress(percent float64) {
	p.program.Send(ProgressMsg(percent))
}

func (p *ProgramReporter) Done(summary string) {
	p.program.Send(DoneMsg{Summary: summary})
}

func (p *ProgramReporter) Failed(msg string) {
	p.program.Send(DoneMsg{Err: errString(msg)})
}

// Quit stops the bubbletea event loop directly, without a summary or error
// line. Callers use this as a backstop after a pipeline returns through a
// path that never called Done or Failed, so Run always unblocks. Safe to
// call even if the program already quit via Done/Failed; on a program whose
// Run was never called it blocks, so callers only call it once Run started.
func (p *ProgramReporter) Quit() {
	p.program.Quit()
}

type errString string

func (e errString) Error() string { return string(e) }
