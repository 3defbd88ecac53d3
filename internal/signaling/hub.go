package signaling

import (
	"fmt"
	"log/slog"
)

// Hub is the session directory: the single goroutine that owns the
// sessions map and the only place mutating it, so no locking is needed.
type Hub struct {
	sessions map[string]*Session

	inbound    chan inboundMessage
	unregister chan *Client
}

// NewHub creates an empty session directory.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		inbound:    make(chan inboundMessage, 64),
		unregister: make(chan *Client, 16),
	}
}

// SessionCount reports the number of live sessions. Exposed for tests
// asserting the invariant len(sessions) = |{s : sender(s)≠∅ ∨ receiver(s)≠∅}|.
func (h *Hub) SessionCount() int {
	return len(h.sessions)
}

// Run is the hub's cooperative event loop: every inbound message and
// every disconnect is handled to completion before the next is read, so
// the session map never needs a mutex.
func (h *Hub) Run() {
	for {
		select {
		case in := <-h.inbound:
			h.dispatch(in.client, in.msg)
		case c := <-h.unregister:
			h.cleanup(c)
		}
	}
}

func (h *Hub) dispatch(c *Client, msg Message) {
	switch msg.Action {
	case ActionRegister:
		h.handleRegister(c, msg)
	case ActionOffer:
		h.handleOffer(c, msg)
	case ActionAnswer:
		h.handleAnswer(c, msg)
	case ActionCandidate:
		h.handleCandidate(c, msg)
	case ActionCancel:
		h.handleCancel(c, msg)
	default:
		c.Send <- Message{Status: "error", Message: "Invalid message"}
	}
}

func (h *Hub) handleRegister(c *Client, msg Message) {
	session := h.sessions[msg.Session]

	if session != nil && session.clientFor(msg.Role) != nil {
		c.Send <- Message{
			Status:  "error",
			Message: fmt.Sprintf("%s already registered in session %s", msg.Role, msg.Session),
		}
		return
	}

	switch msg.Role {
	case RoleSender:
		h.registerSender(c, msg)
	case RoleReceiver:
		h.registerReceiver(c, msg)
	default:
		c.Send <- Message{Status: "error", Message: "unknown role"}
	}
}

func (h *Hub) registerSender(c *Client, msg Message) {
	session := &Session{Name: msg.Session, Metadata: msg.Metadata}
	session.Sender = c
	h.sessions[msg.Session] = session

	c.role, c.session = RoleSender, msg.Session
	c.Send <- Message{Status: "registered"}
	slog.Info("registered sender", "session", msg.Session)
}

func (h *Hub) registerReceiver(c *Client, msg Message) {
	session, ok := h.sessions[msg.Session]
	if !ok {
		c.Send <- Message{Status: "error", Message: fmt.Sprintf("Session %s does not exist", msg.Session)}
		close(c.Send)
		return
	}

	session.Receiver = c
	c.role, c.session = RoleReceiver, msg.Session
	c.Send <- Message{Status: "registered"}
	slog.Info("registered receiver", "session", msg.Session)

	c.Send <- Message{Action: ActionMetadata, Metadata: session.Metadata}
	if session.offer != "" {
		c.Send <- Message{Action: ActionOffer, SDP: session.offer}
	}
}

func (h *Hub) handleOffer(c *Client, msg Message) {
	session, ok := h.sessions[c.session]
	if !ok {
		return
	}
	session.offer = msg.SDP
	if session.Receiver != nil {
		session.Receiver.Send <- Message{Action: ActionOffer, SDP: msg.SDP}
	}
}

func (h *Hub) handleAnswer(c *Client, msg Message) {
	session, ok := h.sessions[c.session]
	if !ok {
		return
	}
	session.answer = msg.SDP
	if session.Sender != nil {
		session.Sender.Send <- Message{Action: ActionAnswer, SDP: msg.SDP}
	}
}

func (h *Hub) handleCandidate(c *Client, msg Message) {
	session, ok := h.sessions[c.session]
	if !ok {
		return
	}
	session.candidates = append(session.candidates, candidateRecord{Target: msg.Target, Candidate: msg.Candidate})

	if target := session.clientFor(msg.Target); target != nil {
		target.Send <- Message{Action: ActionCandidate, Candidate: msg.Candidate}
	}
}

func (h *Hub) handleCancel(c *Client, msg Message) {
	session, ok := h.sessions[c.session]
	if !ok {
		session, ok = h.sessions[msg.Session]
		if !ok {
			return
		}
	}
	if session.Sender != nil {
		session.Sender.Send <- Message{Action: ActionCancel}
	}
}

// cleanup clears whichever slot c held and deletes the session once both
// slots are empty — the server's reference-counting policy for §5.
func (h *Hub) cleanup(c *Client) {
	if c.session == "" {
		return
	}

	session, ok := h.sessions[c.session]
	if !ok {
		return
	}

	session.setClient(c.role, nil)
	if session.Empty() {
		delete(h.sessions, c.session)
		slog.Debug("session deleted", "session", c.session)
	}
}
