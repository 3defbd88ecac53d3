package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SimpleSpinner is a blocking terminal spinner for operations with no
// natural progress percentage (registration, negotiation).
type SimpleSpinner struct {
	message string
	frames  []string
	interval time.Duration
	done    chan struct{}
	stopped bool
}

// NewWaitingSpinner creates a spinner for waiting on a peer/server event.
func NewWaitingSpinner(message string) *SimpleSpinner {
	return &SimpleSpinner{
		message:  message,
		frames:   spinner.Points.Frames,
		interval: 120 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start begins animating the spinner in the background.
func (s *SimpleSpinner) Start() {
	go func() {
		i := 0
		for {
			select {
			case <-s.done:
				return
			default:
				frame := TitleStyle.Render(s.frames[i%len(s.frames)])
				fmt.Printf("\r%s %s", frame, s.message)
				i++
				time.Sleep(s.interval)
			}
		}
	}()
}

// Stop halts the spinner and clears its line. Safe to call more than once.
func (s *SimpleSpinner) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	fmt.Print("\r\033[K")
}
