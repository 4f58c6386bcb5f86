package ratelimit

import (
	"strconv"

	"dv-relay/internal/apierrors"
	"dv-relay/internal/observability"

	"github.com/gin-gonic/gin"
)

// limitedKey marks a request that exceeded its limit but was let through so the
// handler can answer in its own protocol.
const limitedKey = "rate_limited"

// KeyFunc picks the caller identity for a request. An empty key skips limiting.
type KeyFunc func(c *gin.Context) string

// ByHeaderOrIP keys on a header, falling back to the client IP.
func ByHeaderOrIP(header string) KeyFunc {
	return func(c *gin.Context) string {
		if v := c.GetHeader(header); v != "" {
			return header + ":" + v
		}
		return "ip:" + c.ClientIP()
	}
}

// ByFormValue keys on the first non-empty form field.
func ByFormValue(fields ...string) KeyFunc {
	return func(c *gin.Context) string {
		for _, f := range fields {
			if v := c.PostForm(f); v != "" {
				return f + ":" + v
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// Middleware rejects over-limit requests with a 429.
func (s *Service) Middleware(key KeyFunc) gin.HandlerFunc {
	return s.handle(key, true)
}

// MarkingMiddleware lets over-limit requests through and marks them; see Limited.
func (s *Service) MarkingMiddleware(key KeyFunc) gin.HandlerFunc {
	return s.handle(key, false)
}

// Limited reports whether MarkingMiddleware flagged the request.
func Limited(c *gin.Context) bool {
	return c.GetBool(limitedKey)
}

func (s *Service) handle(key KeyFunc, reject bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		result, err := s.Check(ctx, k)
		if err != nil {
			// never block a caller because the limiter is broken
			s.logger.Error(ctx, "rate limit check failed", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if result.Allowed {
			c.Next()
			return
		}

		retrySeconds := int(result.RetryAfter.Seconds()) + 1
		s.logger.Warn(observability.WithFields(ctx,
			observability.Field{Key: "rate_limit_key", Value: k},
			observability.Field{Key: "retry_after_s", Value: retrySeconds},
		), "rate limit exceeded")

		if !reject {
			c.Set(limitedKey, true)
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(retrySeconds))
		apierrors.TooManyRequests(c, "Too many messages. Please wait a moment and try again.")
	}
}
