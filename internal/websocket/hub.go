package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"doc-qna-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub fans document lifecycle events out to the clients watching a
// namespace. Redis pub/sub carries events across instances so a client
// connected anywhere sees the progress of its uploads.
type Hub struct {
	// Registered clients map: namespace -> connected watchers
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Namespace] = append(h.clients[client.Namespace], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"namespace": client.Namespace})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Namespace]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.Namespace] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.Namespace]) == 0 {
					delete(h.clients, client.Namespace)
					h.logger.Info("Hub", "Namespace has no watchers left", map[string]interface{}{"namespace": client.Namespace})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client regardless of
// namespace.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	h.publishToRedis("*", payload)
}

// Send delivers an event to every watcher of one namespace.
func (h *Hub) Send(namespace, eventType string, data map[string]interface{}) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})

	h.mu.RLock()
	clients, localFound := h.clients[namespace]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"namespace": namespace})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	h.publishToRedis(namespace, payload)
}

// publishToRedis hands the event to sibling instances. "*" targets
// every namespace.
func (h *Hub) publishToRedis(targetNamespace string, message []byte) {
	if h.rdb == nil {
		return
	}
	payload := map[string]interface{}{
		"target_namespace": targetNamespace,
		"message":          json.RawMessage(message),
	}
	jsonPayload, _ := json.Marshal(payload)
	h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and filters on
	// the namespaces it serves locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetNamespace string          `json:"target_namespace"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetNamespace == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetNamespace]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
