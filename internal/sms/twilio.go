package sms

import (
	"context"
	"fmt"

	"voice-intake-be/internal/pkg/logger"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers one SMS. Implementations must be safe for concurrent
// use; the booking pipeline calls this from per-call goroutines.
type Sender interface {
	Send(ctx context.Context, from, to, body string) error
}

type TwilioSender struct {
	client *twilio.RestClient
	logger logger.ILogger
}

func NewTwilioSender(accountSid, authToken string, log logger.ILogger) (*TwilioSender, error) {
	if accountSid == "" || authToken == "" {
		return nil, fmt.Errorf("missing twilio credentials")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioSender{client: client, logger: log}, nil
}

func (t *TwilioSender) Send(_ context.Context, from, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Info("SMS", "Message sent", map[string]interface{}{"to": to, "sid": sid})
	return nil
}

// NopSender is used when Twilio is not configured, e.g. local
// development. Sends are logged and reported as success.
type NopSender struct {
	logger logger.ILogger
}

func NewNopSender(log logger.ILogger) *NopSender {
	return &NopSender{logger: log}
}

func (n *NopSender) Send(_ context.Context, from, to, body string) error {
	n.logger.Info("SMS", "Twilio disabled, dropping message", map[string]interface{}{
		"from": from,
		"to":   to,
		"body": body,
	})
	return nil
}
