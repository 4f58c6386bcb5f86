package handler

import (
	"context"
	"net/http"

	"dv-relay/internal/apierrors"
	"dv-relay/internal/assistant/processor"
	"dv-relay/internal/observability"

	"github.com/gin-gonic/gin"
)

// Assistant answers turns. *processor.AssistantProcessor implements it.
type Assistant interface {
	GetResponse(ctx context.Context, sessionID, utterance string) processor.Response
	EndSession(ctx context.Context, sessionID string)
}

type Handler struct {
	assistant Assistant
	logger    *observability.Logger
}

func New(assistant Assistant, logger *observability.Logger) Handler {
	return Handler{
		assistant: assistant,
		logger:    logger,
	}
}

// ChatRequest is one typed turn from the web client
type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required,max=128"`
	Message   string `json:"message" binding:"required,max=2000"`
}

// ChatResponse is the answer to a ChatRequest
type ChatResponse struct {
	VoiceResponse string `json:"voice_response"`
	SMSResponse   string `json:"sms_response"`
	WebResponse   string `json:"web_response"`
	Source        string `json:"source"`
	FollowUpType  string `json:"follow_up_type,omitempty"`
	Intent        string `json:"intent,omitempty"`
	Location      string `json:"location,omitempty"`
}

func toChatResponse(r processor.Response) ChatResponse {
	return ChatResponse{
		VoiceResponse: r.Voice,
		SMSResponse:   r.SMS,
		WebResponse:   r.Web,
		Source:        string(r.Source),
		FollowUpType:  string(r.FollowUpType),
		Intent:        r.Intent.String(),
		Location:      r.Location,
	}
}

// HandleChat handles POST /api/chat
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	key, err := sessionKey(req.SessionID)
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, err.Error())
		return
	}

	ctx := observability.WithFields(c.Request.Context(),
		observability.Field{Key: "session_id", Value: key},
		observability.Field{Key: "channel", Value: "web"},
	)

	resp := h.assistant.GetResponse(ctx, key, req.Message)
	c.JSON(http.StatusOK, toChatResponse(resp))
}

// HandleEndSession handles DELETE /api/chat/:sessionID
func (h *Handler) HandleEndSession(c *gin.Context) {
	key, err := sessionKey(c.Param("sessionID"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, err.Error())
		return
	}

	h.assistant.EndSession(c.Request.Context(), key)
	c.Status(http.StatusNoContent)
}
