package processor

import (
	"context"
	"time"

	"dv-relay/internal/cache"
	"dv-relay/internal/conversation"
	"dv-relay/internal/followup"
	"dv-relay/internal/intent"
	"dv-relay/internal/location"
)

// ContextStore is the per-session memory. *conversation.Store implements it.
type ContextStore interface {
	Get(sessionID string) (conversation.Context, bool)
	Update(sessionID string, p conversation.UpdateParams)
	Clear(sessionID string)
	Lock(sessionID string) func()
	Now() time.Time
}

// FollowUpResolver is implemented by *followup.Resolver.
type FollowUpResolver interface {
	Resolve(utterance string, qc *conversation.QueryContext, now time.Time) *followup.Result
}

// IntentClassifier is implemented by *intent.Classifier.
type IntentClassifier interface {
	Classify(text string) intent.Classification
}

// LocationExtractor is implemented by *location.Resolver.
type LocationExtractor interface {
	Extract(ctx context.Context, text string) location.Info
}

// ResponseCache is implemented by *cache.ResponseCache.
type ResponseCache interface {
	Get(ctx context.Context, query string) (cache.Entry, bool)
	Set(ctx context.Context, query string, entry cache.Entry)
}
