package ws_room

import (
	"github.com/gorilla/websocket"
	"github.com/scrumpoker/core/internal/model"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event

	// Owned by the read goroutine: the room and identity this
	// connection last asked to be bound to.
	roomCode    string
	participant model.Participant
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Event, 8),
	}
}

// boundRoom checks the command targets the room this connection
// joined; commands from unbound connections are refused.
func (c *Client) boundRoom(msg Message) (string, bool) {
	if c.roomCode == "" {
		c.sendEvent(errorEvent("join a room before sending commands"))
		return "", false
	}
	if msg.RoomCode != "" && msg.RoomCode != c.roomCode {
		c.sendEvent(errorEvent("message room does not match joined room"))
		return "", false
	}
	return c.roomCode, true
}

// sendEvent queues directly for this client only, dropping on a full
// buffer rather than blocking the read loop.
func (c *Client) sendEvent(ev Event) {
	select {
	case c.send <- ev:
	default:
	}
}

// disconnect tears down the transport; the read loop's exit then
// funnels the client through the unregister path.
func (c *Client) disconnect() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
