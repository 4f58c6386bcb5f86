package apierrors

import (
	"net/http"

	"dv-relay/internal/observability"

	"github.com/gin-gonic/gin"
)

var logger = observability.NewLogger()

// Error codes returned to chat clients and webhook callers
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeSessionRequired  = "SESSION_REQUIRED"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeInvalidSignature = "INVALID_SIGNATURE"
)

// ErrorResponse is the JSON body of every non-2xx API answer. Hotline is
// always set so a client that only renders errors still shows it.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Hotline string `json:"hotline"`
}

const hotline = "1-800-799-7233"

func respond(c *gin.Context, status int, code, message string) {
	ctx := observability.WithFields(c.Request.Context(),
		observability.Field{Key: "status_code", Value: status},
		observability.Field{Key: "error_code", Value: code},
		observability.Field{Key: "path", Value: c.FullPath()},
	)
	logger.Info(ctx, "request rejected")

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Hotline: hotline,
	})
}

// BadRequest rejects a malformed request.
func BadRequest(c *gin.Context, code, message string) {
	respond(c, http.StatusBadRequest, code, message)
}

// Forbidden rejects a webhook whose signature does not verify.
func Forbidden(c *gin.Context, code, message string) {
	respond(c, http.StatusForbidden, code, message)
}

// TooManyRequests rejects a caller over its turn budget.
func TooManyRequests(c *gin.Context, message string) {
	respond(c, http.StatusTooManyRequests, CodeRateLimited, message)
}
