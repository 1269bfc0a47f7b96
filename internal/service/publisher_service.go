package service

import (
	"context"
	"encoding/json"
	"time"

	"voice-intake-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// CallEventMessage is the envelope carried on the in-process bus for
// every call lifecycle event.
type CallEventMessage struct {
	EventType  string                 `json:"event_type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type IPublisherService interface {
	PublishCallEvent(ctx context.Context, eventType string, payload map[string]interface{})
}

// publisherService puts call events on the watermill channel. The hot
// call path must never block on downstream systems, so everything slow
// (NATS, email) happens on the consumer side.
type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    log,
	}
}

func (ps *publisherService) PublishCallEvent(_ context.Context, eventType string, payload map[string]interface{}) {
	envelope := CallEventMessage{
		EventType:  eventType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		ps.logger.Error("Publisher", "Failed to marshal call event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		ps.logger.Error("Publisher", "Failed to publish call event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
