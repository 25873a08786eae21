package service

import (
	"context"
	"encoding/json"

	"onechart-be/internal/dto"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Frame types pushed on the live socket.
const (
	LiveSessionUpserted = "session.upserted"
	LiveSessionRemoved  = "session.removed"
)

// LiveDelivery pushes a frame to every socket the user has open. The websocket hub implements it.
type LiveDelivery interface {
	Send(userID uuid.UUID, envelope websocket.Envelope)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  LiveDelivery
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery LiveDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	// Undecodable frames are acked so they are not redelivered forever.
	defer msg.Ack()

	var change dto.SessionChangeMessage
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal session change", map[string]interface{}{"error": err.Error()})
		return
	}

	envelope := websocket.Envelope{Type: LiveSessionUpserted, Data: change.Session}
	if change.Kind == string(memory.ChangeRemove) {
		envelope = websocket.Envelope{Type: LiveSessionRemoved, Data: map[string]string{"id": change.SessionId.String()}}
	}
	cs.delivery.Send(change.UserId, envelope)
}

// NewSessionChangeForwarder turns view-store changes into messages on the live-update topic.
func NewSessionChangeForwarder(publisher IPublisherService, log logger.ILogger) memory.ChangeListener {
	return func(change memory.SessionChange) {
		payload, err := json.Marshal(dto.SessionChangeMessage{
			Kind:      string(change.Kind),
			UserId:    change.UserId,
			SessionId: change.SessionId,
			Session:   dto.NewSessionResponse(change.Session),
		})
		if err != nil {
			log.Error("SessionChangeForwarder", "Failed to marshal session change", map[string]interface{}{"error": err.Error()})
			return
		}
		if err := publisher.Publish(context.Background(), payload); err != nil {
			log.Warn("SessionChangeForwarder", "Failed to publish session change", map[string]interface{}{"error": err.Error()})
		}
	}
}
