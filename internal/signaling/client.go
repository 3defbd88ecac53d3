package signaling

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // enough for an SDP offer/answer
)

// inboundMessage pairs a parsed Message with the connection it arrived on,
// the unit of work the Hub's single event loop processes.
type inboundMessage struct {
	client *Client
	msg    Message
}

// Client wraps one WebSocket connection — either a sender or a receiver,
// role is decided by its first "register" message.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Send is a buffered channel of outbound messages; WritePump is the
	// sole writer to conn, so every send to the peer goes through here.
	Send chan Message

	// role and session are set once registration succeeds, used by the
	// hub to find which session slot this client occupies on cleanup.
	role    string
	session string
}

// NewClient wraps conn for use by the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		Send: make(chan Message, 16),
	}
}

// ReadPump reads JSON messages from the connection and feeds them to the
// hub's single event loop. It is the only goroutine that reads conn.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("signaling read error", "err", err)
			}
			return
		}
		c.hub.inbound <- inboundMessage{client: c, msg: msg}
	}
}

// WritePump writes messages from Send to the connection and pings the
// peer on an interval. It is the only goroutine that writes conn.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("signaling write error", "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
