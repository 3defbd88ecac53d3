package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg reports a new percentage complete, 0-100.
type ProgressMsg float64

// DoneMsg signals the transfer finished; Err is nil on success.
type DoneMsg struct {
	Summary string
	Err     error
}

// ProgressModel drives a single bubbletea progress bar for one transfer.
type ProgressModel struct {
	bar     progress.Model
	percent float64
	label   string
	done    bool
	summary string
	err     error
}

// NewProgressModel creates a progress bar shown under label (e.g.
// "Sending" or "Receiving").
func NewProgressModel(label string) ProgressModel {
	return ProgressModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		label: label,
	}
}

func (m ProgressModel) Init() tea.Cmd { return nil }

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.percent = float64(msg) / 100
		return m, nil
	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render(m.err.Error()) + "\n"
		}
		return SuccessStyle.Render(m.summary) + "\n"
	}
	return fmt.Sprintf("%s\n%s\n", m.label, m.bar.ViewAs(m.percent))
}
