package ui

import "fmt"

// PlainReporter prints plain progress lines with no terminal UI — used
// when stdout isn't a TTY or --plain is given.
type PlainReporter struct{}

func (PlainReporter) Info(msg string)        { fmt.Println(msg) }
func (PlainReporter) Progress(percent float64) { fmt.Printf("\rProgress: %.3f%%", percent) }
func (PlainReporter) Done(summary string)    { fmt.Println(); PrintSuccess(summary) }
func (PlainReporter) Failed(msg string)      { fmt.Println(); PrintError(msg) }
