package signaling

import "encoding/json"

// candidateRecord is a stored ICE candidate, kept in arrival order.
// Stored candidates are not replayed to a slot that binds later.
type candidateRecord struct {
	Target    string
	Candidate json.RawMessage
}

// Session is the server-side record for one named rendezvous. It exists
// iff at least one of Sender/Receiver is bound; it is created by the
// sender's registration and destroyed when both slots empty.
type Session struct {
	Name     string
	Sender   *Client
	Receiver *Client
	Metadata json.RawMessage

	offer      string
	answer     string
	candidates []candidateRecord
}

// Empty reports whether neither role slot is bound, the signal the hub
// uses to delete the session record.
func (s *Session) Empty() bool {
	return s.Sender == nil && s.Receiver == nil
}

func (s *Session) clientFor(role string) *Client {
	switch role {
	case RoleSender:
		return s.Sender
	case RoleReceiver:
		return s.Receiver
	default:
		return nil
	}
}

func (s *Session) setClient(role string, c *Client) {
	switch role {
	case RoleSender:
		s.Sender = c
	case RoleReceiver:
		s.Receiver = c
	}
}
