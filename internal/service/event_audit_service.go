package service

import (
	"context"

	"onechart-be/internal/pkg/logger"
	"onechart-be/pkg/events"
	pktNats "onechart-be/pkg/nats"
)

// EventAuditService records every domain event from the stream in the application log.
type EventAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventAuditService(sub *pktNats.Subscriber, log logger.ILogger) *EventAuditService {
	return &EventAuditService{
		subscriber: sub,
		logger:     log,
	}
}

func (s *EventAuditService) Start(ctx context.Context) {
	if s.subscriber == nil {
		return
	}
	if err := s.subscriber.Subscribe(ctx, pktNats.Subject(">"), "onechart-audit", s.HandleEvent); err != nil {
		s.logger.Error("EventAuditService", "Failed to start event subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("EventAuditService", "Listening for domain events", nil)
}

func (s *EventAuditService) HandleEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.logger.Info("EventAuditService", "Domain event", details)
	return nil
}
