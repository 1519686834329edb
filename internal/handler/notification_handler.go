package handler

import (
	"time"

	"doc-qna-be/internal/config"
	"doc-qna-be/internal/pkg/logger"
	"doc-qna-be/internal/pkg/serverutils"
	"doc-qna-be/internal/service"
	internalWS "doc-qna-be/internal/websocket"
	"doc-qna-be/pkg/events"
	pktNats "doc-qna-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationHandler exposes the document-status websocket and the
// admin broadcast endpoint.
type NotificationHandler struct {
	service   *service.NotificationService
	publisher *pktNats.Publisher
	hub       *internalWS.Hub
	cfg       *config.Config
	logger    logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, pub *pktNats.Publisher, hub *internalWS.Hub, cfg *config.Config, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		publisher: pub,
		hub:       hub,
		cfg:       cfg,
		logger:    log,
	}
}

// ServeWs upgrades the request and attaches the peer as a watcher of
// one namespace's document lifecycle events.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	namespace := c.Query("namespace")
	if namespace == "" {
		namespace = h.cfg.Rag.DefaultNamespace
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting status WebSocket session", map[string]interface{}{"namespace": namespace})
			internalWS.ServeWs(h.hub, conn, namespace)
			h.logger.Info("NotificationHandler", "Status WebSocket session ended", map[string]interface{}{"namespace": namespace})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Broadcast sends a system-wide notice to every connected client.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	type Request struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Title == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and Message are required"})
	}

	evt := events.BaseEvent{
		Type: "SYSTEM_BROADCAST",
		Data: map[string]interface{}{
			"title":   req.Title,
			"message": req.Message,
		},
		OccurredAt: time.Now(),
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"status": "Broadcast Queued"})
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")
	notif.Use(serverutils.JwtMiddleware)
	notif.Post("/broadcast", h.Broadcast)

	// WebSocket for document status watching; the middleware accepts
	// the token as a query parameter for browser clients.
	router.Get("/ws/status", serverutils.JwtMiddleware, h.ServeWs)
}
