package service

import (
	"context"
	"fmt"
	"strings"

	"doc-qna-be/internal/pkg/logger"
	"doc-qna-be/pkg/events"
	pktNats "doc-qna-be/pkg/nats"
)

// StatusDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type StatusDelivery interface {
	Send(namespace, eventType string, data map[string]interface{})
	Broadcast(eventType string, data map[string]interface{})
}

// NotificationService bridges the event bus to connected clients:
// document lifecycle events published by the ingestion workers are
// fanned out to whoever watches that namespace.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   StatusDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery StatusDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "doc-status-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start status subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects include the stream prefix
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	switch typeCode {
	case events.EventDocumentIngested, events.EventDocumentEmbedded, events.EventDocumentFailed:
		if s.delivery == nil {
			return nil
		}
		payload := event.Payload()
		namespace, _ := payload["namespace"].(string)
		if namespace == "" {
			s.logger.Warn("NotificationService", "Document event without namespace, broadcasting", map[string]interface{}{"type": typeCode})
			s.delivery.Broadcast(typeCode, payload)
			return nil
		}
		s.delivery.Send(namespace, typeCode, payload)

	case "SYSTEM_BROADCAST":
		if s.delivery != nil {
			s.delivery.Broadcast(typeCode, event.Payload())
		}

	default:
		// Unknown events are acked, not retried.
		s.logger.Info("NotificationService", fmt.Sprintf("Ignoring event type: %s", typeCode), nil)
	}

	return nil
}
