package api

import (
	"net/http"

	assistantHandler "dv-relay/internal/assistant/handler"
	"dv-relay/internal/ratelimit"
	voiceCallHandler "dv-relay/internal/voicecall/handler"
	"dv-relay/internal/voicecall/twilio"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	router             *gin.RouterGroup
	assistantHandler   assistantHandler.Handler
	voiceCallHandler   voiceCallHandler.Handler
	signatureValidator *twilio.SignatureValidator
	rateLimiter        *ratelimit.Service
}

// New wires the handlers. signatureValidator may be nil to accept unsigned webhooks.
func New(
	router *gin.RouterGroup,
	assistantHandler assistantHandler.Handler,
	voiceCallHandler voiceCallHandler.Handler,
	signatureValidator *twilio.SignatureValidator,
	rateLimiter *ratelimit.Service,
) API {
	return API{
		router:             router,
		assistantHandler:   assistantHandler,
		voiceCallHandler:   voiceCallHandler,
		signatureValidator: signatureValidator,
		rateLimiter:        rateLimiter,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := a.router.Group("/api")
	{
		chatGroup := apiGroup.Group("/chat")
		chatGroup.POST("", a.rateLimiter.Middleware(ratelimit.ByHeaderOrIP("X-Session-ID")), a.assistantHandler.HandleChat)
		chatGroup.DELETE("/:sessionID", a.assistantHandler.HandleEndSession)
		chatGroup.GET("/ws", a.assistantHandler.HandleWebSocket)
	}

	twilioGroup := a.router.Group("/twilio")
	if a.signatureValidator != nil {
		twilioGroup.Use(a.signatureValidator.Middleware())
	}
	{
		turns := a.rateLimiter.MarkingMiddleware(ratelimit.ByFormValue("CallSid", "From"))
		twilioGroup.POST("/voice", a.voiceCallHandler.HandleIncomingCall)
		twilioGroup.POST("/voice/process", turns, a.voiceCallHandler.HandleProcessSpeech)
		twilioGroup.POST("/voice/status", a.voiceCallHandler.HandleCallStatus)
		twilioGroup.POST("/sms", turns, a.voiceCallHandler.HandleIncomingSMS)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
