package wsclient

import (
	"github.com/skelly37/tunnel-go/internal/signaling"
)

// Handler routes incoming signalling messages from a Client onto typed
// channels a pipeline can select on, instead of switching on message
// shape inline at every call site.
type Handler struct {
	client *Client

	Registered chan struct{}
	Error      chan string
	Metadata   chan []byte
	Offer      chan string
	Answer     chan string
	Candidate  chan []byte
	Cancel     chan struct{}

	closed bool
}

// NewHandler creates a handler bound to client. Call Start to begin
// routing; it returns once client's incoming channel closes.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:     client,
		Registered: make(chan struct{}, 1),
		Error:      make(chan string, 1),
		Metadata:   make(chan []byte, 1),
		Offer:      make(chan string, 1),
		Answer:     make(chan string, 1),
		Candidate:  make(chan []byte, 32),
		Cancel:     make(chan struct{}, 1),
	}
}

// Start consumes client's incoming messages until the connection closes.
// Run it in its own goroutine.
func (h *Handler) Start() {
	for msg := range h.client.Incoming() {
		switch {
		case msg.Status == "registered":
			h.Registered <- struct{}{}
		case msg.Status == "error":
			h.Error <- msg.Message
		case msg.Action == signaling.ActionMetadata:
			h.Metadata <- []byte(msg.Metadata)
		case msg.Action == signaling.ActionOffer:
			h.Offer <- msg.SDP
		case msg.Action == signaling.ActionAnswer:
			h.Answer <- msg.SDP
		case msg.Action == signaling.ActionCandidate:
			h.Candidate <- []byte(msg.Candidate)
		case msg.Action == signaling.ActionCancel:
			h.Cancel <- struct{}{}
		}
	}
	h.closeChannels()
}

func (h *Handler) closeChannels() {
	if h.closed {
		return
	}
	h.closed = true
	close(h.Registered)
	close(h.Error)
	close(h.Metadata)
	close(h.Offer)
	close(h.Answer)
	close(h.Candidate)
	close(h.Cancel)
}
