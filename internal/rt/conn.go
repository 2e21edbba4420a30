package rt

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"restaurant-pos-backend/internal/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Conn is one authenticated staff socket. The hub writes into send; the
// write pump drains it onto the wire.
type Conn struct {
	principal auth.Principal
	ws        *websocket.Conn
	send      chan []byte
}

// Principal returns the verified identity behind the connection.
func (c *Conn) Principal() auth.Principal {
	return c.principal
}

// writePump pushes hub messages and keepalive pings onto the wire. It exits
// when the hub closes the send channel or a write fails.
func (c *Conn) writePump(hub *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; state changes only ever flow in through
// HTTP. Its real job is noticing the peer going away.
func (c *Conn) readPump(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("socket for user %d closed unexpectedly: %v", c.principal.UserID, err)
			}
			return
		}
	}
}
