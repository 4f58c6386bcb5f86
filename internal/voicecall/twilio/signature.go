package twilio

import (
	"net/http"

	"dv-relay/internal/apierrors"
	"dv-relay/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/client"
)

const signatureHeader = "X-Twilio-Signature"

// SignatureValidator rejects webhooks not signed with the account's auth token.
type SignatureValidator struct {
	validator client.RequestValidator
	publicURL string
	logger    *observability.Logger
}

// NewSignatureValidator validates against publicURL, the externally visible base
// URL Twilio was configured with. Behind a proxy the request host is not it.
func NewSignatureValidator(authToken, publicURL string, logger *observability.Logger) *SignatureValidator {
	return &SignatureValidator{
		validator: client.NewRequestValidator(authToken),
		publicURL: publicURL,
		logger:    logger,
	}
}

// Middleware answers 403 when the signature does not match.
func (v *SignatureValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := c.Request.ParseForm(); err != nil {
			v.logger.WarnWithError(ctx, "failed to parse Twilio webhook form", err)
			apierrors.BadRequest(c, apierrors.CodeInvalidInput, "invalid form body")
			return
		}

		params := make(map[string]string, len(c.Request.PostForm))
		for k, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				params[k] = vals[0]
			}
		}

		url := v.requestURL(c.Request)
		if !v.validator.Validate(url, params, c.GetHeader(signatureHeader)) {
			v.logger.Warn(observability.WithFields(ctx,
				observability.Field{Key: "url", Value: url},
			), "Twilio signature mismatch")
			apierrors.Forbidden(c, apierrors.CodeInvalidSignature, "invalid signature")
			return
		}

		c.Next()
	}
}

func (v *SignatureValidator) requestURL(r *http.Request) string {
	base := v.publicURL
	if base == "" {
		scheme := "https"
		if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") == "" {
			scheme = "http"
		}
		base = scheme + "://" + r.Host
	}
	return base + r.URL.RequestURI()
}
