package cmd

import (
	"os"

	"golang.org/x/term"

	"github.com/skelly37/tunnel-go/internal/ui"
)

// newReporter picks the bubbletea progress UI when stdout is a terminal
// and the user hasn't asked for --plain, falling back to plain text lines
// otherwise (piped output, CI, dumb terminals).
func newReporter(label string) ui.Reporter {
	if plainOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ui.PlainReporter{}
	}
	return ui.NewProgramReporter(label)
}

// runReporter starts pumping reporter's UI loop if it has one, returning a
// channel closed once that loop exits. Callers should wait on it after the
// transfer finishes so the final Done/Failed frame renders before the
// process prints its own summary and exits.
func runReporter(reporter ui.Reporter) <-chan struct{} {
	done := make(chan struct{})

	prog, ok := reporter.(*ui.ProgramReporter)
	if !ok {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if err := prog.Run(); err != nil {
			ui.PrintError(err.Error())
		}
	}()

	return done
}

// closedChan returns an already-closed channel, for callers that never
// start a progress UI (no *ui.ProgramReporter was running) and so have
// nothing to wait on.
func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// quitReporter stops reporter's bubbletea loop if it has one. It is a
// backstop called after a pipeline returns: many error and decline paths
// never call Done or Failed, and without this, Run would block forever
// waiting for a message that's never sent. Safe to call on a PlainReporter
// (no-op) or on a program that already quit; a ProgramReporter must have
// been started with runReporter first.
func quitReporter(reporter ui.Reporter) {
	if prog, ok := reporter.(*ui.ProgramReporter); ok {
		prog.Quit()
	}
}
