package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// InputRow is one path the sender was asked to archive together.
type InputRow struct {
	Index int
	Path  string
	Kind  string // "file" or "directory"
}

// RenderInputTable renders, as a string, the manifest of inputs being
// folded into a single archive before compression starts.
func RenderInputTable(rows []InputRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "Path", "Kind")

	for _, r := range rows {
		t.Row(strconv.Itoa(r.Index), r.Path, r.Kind)
	}

	return t.Render()
}
