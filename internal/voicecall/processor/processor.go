package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"strings"

	assistant "dv-relay/internal/assistant/processor"
	"dv-relay/internal/followup"
	"dv-relay/internal/observability"
)

// Assistant answers one turn. *assistant.AssistantProcessor implements it.
type Assistant interface {
	GetResponse(ctx context.Context, sessionID, utterance string) assistant.Response
	EndSession(ctx context.Context, sessionID string)
}

// Messenger sends an SMS to a caller.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) error
}

const (
	GreetingMessage = "Thank you for calling. This line can help you find a domestic violence shelter, legal help, or information. " +
		"If you are in immediate danger, hang up and call 911. How can I help you today?"
	RepromptMessage  = "I'm sorry, I didn't hear anything. What kind of help are you looking for?"
	GoodbyeMessage   = "I'm going to end the call now. You can call back any time, or reach the National Domestic Violence Hotline at 1-800-799-7233. Take care."
	ContinuePrompt   = "Is there anything else I can help you with?"
	SMSSentSuffix    = " You should receive it shortly."
	SMSFailedMessage = "I'm sorry, I wasn't able to send a text message right now. Please try again in a little while, or write down the details as I read them."
	SMSUnavailable   = "I'm not able to send text messages from this line. I can read the details to you instead. Just ask for the phone numbers or addresses."
	SlowDownMessage  = "I'm still working on your last request. Please wait a moment and try again."
	SMSResetMessage  = "Your conversation has been cleared. How can I help you? You can ask about shelters, legal help, or information."
	SMSSessionPrefix = "sms:"
	MaxSilentPrompts = 2
)

// resetCommands clear an SMS conversation.
var resetCommands = map[string]struct{}{
	"reset":      {},
	"start over": {},
	"restart":    {},
}

// terminalStatuses end a call's conversation.
var terminalStatuses = map[string]struct{}{
	"completed": {},
	"busy":      {},
	"failed":    {},
	"no-answer": {},
	"canceled":  {},
}

// VoiceCallProcessor adapts Twilio voice and SMS turns to the assistant.
type VoiceCallProcessor struct {
	assistant Assistant
	messenger Messenger
	logger    *observability.Logger
}

// NewVoiceCallProcessor creates a processor. messenger may be nil when outbound
// SMS is not configured.
func NewVoiceCallProcessor(a Assistant, messenger Messenger, logger *observability.Logger) *VoiceCallProcessor {
	return &VoiceCallProcessor{
		assistant: a,
		messenger: messenger,
		logger:    logger,
	}
}

// HandleSpeech answers one spoken turn of a call and returns what to say.
func (p *VoiceCallProcessor) HandleSpeech(ctx context.Context, callSID, from, speech string) string {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_sid", Value: callSID},
		observability.Field{Key: "channel", Value: "voice"},
	)

	if strings.TrimSpace(speech) == "" {
		return RepromptMessage
	}

	resp := p.assistant.GetResponse(ctx, callSID, speech)
	if resp.FollowUpType != followup.SendDetails {
		return resp.Voice
	}

	if p.messenger == nil {
		return SMSUnavailable
	}
	if err := p.messenger.SendSMS(ctx, from, resp.SMS); err != nil {
		p.logger.Error(ctx, "failed to text details to caller", err)
		return SMSFailedMessage
	}
	return resp.Voice + SMSSentSuffix
}

// HandleSMS answers one inbound text message and returns the reply body.
func (p *VoiceCallProcessor) HandleSMS(ctx context.Context, from, body string) string {
	sessionID := SMSSessionPrefix + from
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "session_id", Value: sessionID},
		observability.Field{Key: "channel", Value: "sms"},
	)

	if _, ok := resetCommands[strings.ToLower(strings.TrimSpace(body))]; ok {
		p.assistant.EndSession(ctx, sessionID)
		return SMSResetMessage
	}

	return p.assistant.GetResponse(ctx, sessionID, body).SMS
}

// HandleCallStatus forgets a call once Twilio reports it finished. It reports
// whether the session was cleared.
func (p *VoiceCallProcessor) HandleCallStatus(ctx context.Context, callSID, status string) bool {
	if _, ok := terminalStatuses[strings.ToLower(status)]; !ok {
		return false
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_sid", Value: callSID},
		observability.Field{Key: "call_status", Value: status},
	)
	p.assistant.EndSession(ctx, callSID)
	return true
}
