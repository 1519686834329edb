package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// StreamConn adapts an upgraded connection to the answer pipeline's
// transport contract. Writes are serialized so concurrent emitters
// cannot interleave frames.
type StreamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewStreamConn(conn *websocket.Conn) *StreamConn {
	return &StreamConn{conn: conn}
}

func (c *StreamConn) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}
