// Package wsclient is the CLI-side counterpart of the signalling
// protocol in internal/signaling: it dials the server, pumps JSON
// messages in both directions, and routes server replies onto typed
// channels a pipeline can select on.
package wsclient

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skelly37/tunnel-go/internal/signaling"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages the WebSocket connection to the signalling server.
type Client struct {
	conn *websocket.Conn

	incoming chan signaling.Message
	outgoing chan signaling.Message
	done     chan struct{}
	closed   bool
}

// Dial connects to serverAddress and starts the read/write pumps.
func Dial(serverAddress string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(serverAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to signaling server: %w", err)
	}

	c := &Client{
		conn:     conn,
		incoming: make(chan signaling.Message, 16),
		outgoing: make(chan signaling.Message, 16),
		done:     make(chan struct{}),
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return c, nil
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		var msg signaling.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.incoming <- msg
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outgoing:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// Send queues msg for delivery. Safe to call from any goroutine.
func (c *Client) Send(msg signaling.Message) {
	c.outgoing <- msg
}

// Incoming returns the channel of messages received from the server.
func (c *Client) Incoming() <-chan signaling.Message {
	return c.incoming
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
