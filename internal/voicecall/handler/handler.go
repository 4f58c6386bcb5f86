package handler

import (
	"context"
	"net/http"
	"strconv"

	"dv-relay/internal/observability"
	"dv-relay/internal/ratelimit"
	"dv-relay/internal/voicecall/processor"
	"dv-relay/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
)

const processPath = "/twilio/voice/process"

type Handler struct {
	voiceProcessor *processor.VoiceCallProcessor
	logger         *observability.Logger
}

func New(voiceProcessor *processor.VoiceCallProcessor, logger *observability.Logger) Handler {
	return Handler{
		voiceProcessor: voiceProcessor,
		logger:         logger,
	}
}

// HandleIncomingCall handles POST /twilio/voice
func (h *Handler) HandleIncomingCall(c *gin.Context) {
	ctx := observability.WithFields(c.Request.Context(),
		observability.Field{Key: "call_sid", Value: c.PostForm("CallSid")},
	)
	h.logger.Info(ctx, "incoming call")

	h.gather(ctx, c, processor.GreetingMessage, 0)
}

// HandleProcessSpeech handles POST /twilio/voice/process
func (h *Handler) HandleProcessSpeech(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	ctx := observability.WithFields(c.Request.Context(), observability.Field{Key: "call_sid", Value: callSID})

	if ratelimit.Limited(c) {
		h.gather(ctx, c, processor.SlowDownMessage, 0)
		return
	}

	speech := c.PostForm("SpeechResult")
	if speech == "" {
		silences, _ := strconv.Atoi(c.Query(twilio.SilenceParam))
		if silences >= processor.MaxSilentPrompts {
			h.hangup(ctx, c, processor.GoodbyeMessage)
			return
		}
		h.gather(ctx, c, processor.RepromptMessage, silences)
		return
	}

	say := h.voiceProcessor.HandleSpeech(ctx, callSID, c.PostForm("From"), speech)
	h.gather(ctx, c, say+" "+processor.ContinuePrompt, 0)
}

// HandleCallStatus handles POST /twilio/voice/status
func (h *Handler) HandleCallStatus(c *gin.Context) {
	h.voiceProcessor.HandleCallStatus(c.Request.Context(), c.PostForm("CallSid"), c.PostForm("CallStatus"))
	c.Status(http.StatusNoContent)
}

// HandleIncomingSMS handles POST /twilio/sms
func (h *Handler) HandleIncomingSMS(c *gin.Context) {
	ctx := c.Request.Context()

	reply := processor.SlowDownMessage
	if !ratelimit.Limited(c) {
		reply = h.voiceProcessor.HandleSMS(ctx, c.PostForm("From"), c.PostForm("Body"))
	}

	twimlResult, err := twilio.Message(reply)
	if err != nil {
		h.logger.Error(ctx, "failed to build messaging TwiML", err)
		c.Status(http.StatusNoContent)
		return
	}
	writeTwiML(c, twimlResult)
}

func (h *Handler) gather(ctx context.Context, c *gin.Context, prompt string, silences int) {
	twimlResult, err := twilio.GatherSpeech(prompt, processPath, silences)
	if err != nil {
		h.logger.Error(ctx, "failed to build gather TwiML", err)
		h.hangup(ctx, c, processor.GoodbyeMessage)
		return
	}
	writeTwiML(c, twimlResult)
}

func (h *Handler) hangup(ctx context.Context, c *gin.Context, message string) {
	twimlResult, err := twilio.SayAndHangup(message)
	if err != nil {
		h.logger.Error(ctx, "failed to build hangup TwiML", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	writeTwiML(c, twimlResult)
}

func writeTwiML(c *gin.Context, body string) {
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, body)
}
