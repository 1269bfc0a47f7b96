package service

import (
	"context"
	"encoding/json"

	"voice-intake-be/internal/conversation"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/pkg/mailer"
	"voice-intake-be/internal/repository/contract"
	pkgEvents "voice-intake-be/pkg/events"
	pktNats "voice-intake-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process call-event channel: every event
// is forwarded to NATS for external consumers, and ended calls that
// produced a fallback lead trigger an office email so a human follows
// up. Everything here is off the hot call path.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher
	mailer    mailer.IEmailService
	sessions  contract.CallSessionRepository
	tenants   contract.TenantRepository
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	emailService mailer.IEmailService,
	sessions contract.CallSessionRepository,
	tenants contract.TenantRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		mailer:    emailService,
		sessions:  sessions,
		tenants:   tenants,
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
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope CallEventMessage
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal call event", map[string]interface{}{"error": err.Error()})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	cs.forwardToNats(ctx, envelope)

	switch envelope.EventType {
	case conversation.EventCallEnded:
		cs.handleCallEnded(ctx, envelope)
	case conversation.EventBookingFailed:
		cs.handleBookingFailed(ctx, envelope)
	}

	msg.Ack()
}

func (cs *consumerService) forwardToNats(ctx context.Context, envelope CallEventMessage) {
	if cs.natsPub == nil {
		return
	}
	evt := pkgEvents.BaseEvent{
		Type:       envelope.EventType,
		Data:       envelope.Payload,
		OccurredAt: envelope.OccurredAt,
	}
	if err := cs.natsPub.Publish(ctx, evt); err != nil {
		cs.logger.Error("Consumer", "Failed to forward event to NATS", map[string]interface{}{
			"event_type": envelope.EventType,
			"error":      err.Error(),
		})
	}
}

// handleCallEnded emails the office when the call produced a fallback
// lead. The email is best-effort; the lead row is already durable.
func (cs *consumerService) handleCallEnded(ctx context.Context, envelope CallEventMessage) {
	leadCreated, _ := envelope.Payload["lead_created"].(bool)
	if !leadCreated {
		return
	}

	callID, _ := envelope.Payload["call_id"].(string)
	tenantID, _ := envelope.Payload["tenant_id"].(string)
	summary, _ := envelope.Payload["summary"].(string)

	tenant, err := cs.tenants.FindById(ctx, tenantID)
	if err != nil || tenant == nil || tenant.OfficeEmail == "" {
		return
	}

	session, err := cs.sessions.Get(ctx, callID)
	if err != nil || session == nil {
		return
	}

	err = cs.mailer.SendLeadAlert(
		tenant.OfficeEmail,
		tenant.Name,
		strVal(session.Slots.Name),
		session.ConfirmedPhone(),
		strVal(session.Slots.Issue),
		summary,
	)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to send lead alert email", map[string]interface{}{
			"call_id": callID,
			"error":   err.Error(),
		})
		return
	}

	cs.logger.Info("Consumer", "Lead alert sent to office", map[string]interface{}{
		"call_id":   callID,
		"tenant_id": tenantID,
	})
}

// handleBookingFailed emails the office while the caller is likely
// still on the line, so the visit can be booked manually. The caller
// already heard the scripted retry; this is the backstop.
func (cs *consumerService) handleBookingFailed(ctx context.Context, envelope CallEventMessage) {
	callID, _ := envelope.Payload["call_id"].(string)
	tenantID, _ := envelope.Payload["tenant_id"].(string)
	reason, _ := envelope.Payload["error"].(string)

	tenant, err := cs.tenants.FindById(ctx, tenantID)
	if err != nil || tenant == nil || tenant.OfficeEmail == "" {
		return
	}

	session, err := cs.sessions.Get(ctx, callID)
	if err != nil || session == nil {
		return
	}

	err = cs.mailer.SendBookingFailureAlert(
		tenant.OfficeEmail,
		tenant.Name,
		strVal(session.Slots.Name),
		session.ConfirmedPhone(),
		strVal(session.Slots.Issue),
		reason,
	)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to send booking failure email", map[string]interface{}{
			"call_id": callID,
			"error":   err.Error(),
		})
		return
	}

	cs.logger.Info("Consumer", "Booking failure alert sent to office", map[string]interface{}{
		"call_id":   callID,
		"tenant_id": tenantID,
	})
}
