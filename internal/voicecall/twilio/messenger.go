package twilio

import (
	"context"
	"errors"
	"fmt"

	"dv-relay/internal/observability"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// maxSMSLength is the longest body Twilio accepts for one message.
const maxSMSLength = 1600

var (
	ErrMissingRecipient = errors.New("sms recipient is required")
	ErrEmptyBody        = errors.New("sms body is empty")
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Messenger sends outbound SMS through the Twilio REST API.
type Messenger struct {
	api    messageCreator
	from   string
	logger *observability.Logger
}

// NewMessenger creates a messenger sending from the account's number.
func NewMessenger(accountSID, authToken, from string, logger *observability.Logger) *Messenger {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Messenger{api: rest.Api, from: from, logger: logger}
}

// SendSMS texts body to the given number. Bodies over Twilio's limit are cut.
func (m *Messenger) SendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrMissingRecipient
	}
	if body == "" {
		return ErrEmptyBody
	}
	if len(body) > maxSMSLength {
		body = body[:maxSMSLength-3] + "..."
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(m.from)
	params.SetBody(body)

	msg, err := m.api.CreateMessage(params)
	if err != nil {
		m.logger.Error(ctx, "failed to send SMS", err)
		return fmt.Errorf("failed to send sms: %w", err)
	}

	if msg != nil && msg.Sid != nil {
		m.logger.Info(observability.WithFields(ctx, observability.Field{Key: "message_sid", Value: *msg.Sid}), "SMS sent")
	}
	return nil
}
