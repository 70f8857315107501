// Package transport wraps gorilla/websocket behind the small read/write/ping
// seam the gateway depends on, so the rest of the game code never imports
// gorilla directly. Grounded on the teacher's game/websocket.go and
// game/interfaces.go (NetworkSession).
package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// pongWait bounds how long a connection may go without a pong before the
// gateway should consider it dead (spec §D "ping/pong keepalive").
const pongWait = 60 * time.Second

// Session is the minimal duplex-frame interface the gateway depends on.
type Session interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	Close(reason string)
}

// WebsocketConnection adapts a *websocket.Conn to Session.
type WebsocketConnection struct {
	socket *websocket.Conn
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Upgrade promotes an HTTP request to a websocket connection and wraps it.
// Origin is checked upstream by the gin CORS/origin-allowlist middleware,
// so CheckOrigin here is permissive by design. onPong, if non-nil, is
// invoked whenever a keepalive pong arrives — the gateway uses it to mark
// the connection's room as still active even when its occupants send no
// game events for a while.
func Upgrade(w http.ResponseWriter, r *http.Request, onPong func()) (*WebsocketConnection, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		if onPong != nil {
			onPong()
		}
		return nil
	})
	return &WebsocketConnection{socket: conn}, nil
}

func (c *WebsocketConnection) Write(data []byte) error {
	return c.socket.WriteMessage(websocket.TextMessage, data)
}

func (c *WebsocketConnection) Ping() error {
	return c.socket.WriteMessage(websocket.PingMessage, nil)
}

func (c *WebsocketConnection) Read() ([]byte, error) {
	_, p, err := c.socket.ReadMessage()
	return p, err
}

func (c *WebsocketConnection) Close(reason string) {
	c.socket.SetWriteDeadline(time.Now().Add(5 * time.Second))
	c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	c.socket.Close()
}
