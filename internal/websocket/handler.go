package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches one upgraded connection to the hub as a watcher of
// the given namespace. Blocks until the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, namespace string) {
	client := &Client{Hub: hub, Conn: c, Namespace: namespace, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
