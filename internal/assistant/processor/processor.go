package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"strings"
	"time"

	"dv-relay/internal/cache"
	"dv-relay/internal/conversation"
	"dv-relay/internal/followup"
	"dv-relay/internal/intent"
	"dv-relay/internal/location"
	"dv-relay/internal/observability"

	"golang.org/x/sync/errgroup"
)

// Searcher finds resources on the web.
type Searcher interface {
	Search(ctx context.Context, query string) ([]conversation.ResultItem, error)
}

// FallbackGenerator writes a supportive reply when search is unavailable.
type FallbackGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source says which stage produced a response.
type Source string

const (
	SourceValidation    Source = "validation"
	SourceRedirect      Source = "redirect"
	SourceFollowUp      Source = "follow_up"
	SourceClarification Source = "clarification"
	SourceCache         Source = "cache"
	SourceSearch        Source = "search"
	SourceFallback      Source = "fallback"
)

const (
	DefaultSearchTimeout   = 8 * time.Second
	DefaultFallbackTimeout = 8 * time.Second
)

// Response is one answered turn.
type Response struct {
	conversation.Response
	Source       Source        `json:"source"`
	FollowUpType followup.Type `json:"follow_up_type,omitempty"`
	Intent       intent.Intent `json:"intent,omitempty"`
	Location     string        `json:"location,omitempty"`
}

// Dependencies are the collaborators a Processor orchestrates. Fallback may be nil.
type Dependencies struct {
	Store      ContextStore
	FollowUps  FollowUpResolver
	Classifier IntentClassifier
	Locations  LocationExtractor
	Cache      ResponseCache
	Searcher   Searcher
	Fallback   FallbackGenerator
}

// Config bounds the external calls made during a turn.
type Config struct {
	SearchTimeout   time.Duration
	FallbackTimeout time.Duration
}

// AssistantProcessor answers one utterance at a time per session.
type AssistantProcessor struct {
	store      ContextStore
	followUps  FollowUpResolver
	classifier IntentClassifier
	locations  LocationExtractor
	cache      ResponseCache
	searcher   Searcher
	fallback   FallbackGenerator

	searchTimeout   time.Duration
	fallbackTimeout time.Duration
	logger          *observability.Logger
}

func New(deps Dependencies, cfg Config, logger *observability.Logger) *AssistantProcessor {
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = DefaultFallbackTimeout
	}
	return &AssistantProcessor{
		store:           deps.Store,
		followUps:       deps.FollowUps,
		classifier:      deps.Classifier,
		locations:       deps.Locations,
		cache:           deps.Cache,
		searcher:        deps.Searcher,
		fallback:        deps.Fallback,
		searchTimeout:   cfg.SearchTimeout,
		fallbackTimeout: cfg.FallbackTimeout,
		logger:          logger,
	}
}

// GetResponse never fails: every path ends in a user-facing message.
func (p *AssistantProcessor) GetResponse(ctx context.Context, sessionID, utterance string) Response {
	sessionID = strings.TrimSpace(sessionID)
	utterance = strings.TrimSpace(utterance)
	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: sessionID})

	if sessionID == "" || utterance == "" {
		return p.finish(ctx, Response{Response: textResponse(ValidationMessage), Source: SourceValidation})
	}

	p.logger.Debug(observability.WithFields(ctx, observability.Field{Key: "utterance", Value: utterance}), "processing turn")

	if !IsRelevant(utterance) {
		return p.finish(ctx, Response{Response: textResponse(followup.RedirectMessage), Source: SourceRedirect})
	}

	unlock := p.store.Lock(sessionID)
	defer unlock()

	prev, _ := p.store.Get(sessionID)

	if result := p.followUps.Resolve(utterance, prev.LastQueryContext, p.store.Now()); result != nil {
		p.store.Update(sessionID, conversation.UpdateParams{
			Intent:           prev.LastIntent,
			Location:         prev.LastLocation,
			QueryText:        utterance,
			KeepQueryContext: true,
		})
		observability.RecordFollowUp(string(result.Type))
		ctx = observability.WithFields(ctx, observability.Field{Key: "follow_up_type", Value: string(result.Type)})
		return p.finish(ctx, Response{
			Response:     result.Response,
			Source:       SourceFollowUp,
			FollowUpType: result.Type,
			Intent:       prev.LastIntent,
			Location:     prev.LastLocation,
		})
	}

	classification, loc := p.understand(ctx, utterance)
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "intent", Value: classification.Intent.String()},
		observability.Field{Key: "intent_confidence", Value: classification.Confidence},
		observability.Field{Key: "location_scope", Value: string(loc.Scope)},
	)

	switch classification.Intent {
	case intent.Unknown:
		p.store.Update(sessionID, conversation.UpdateParams{
			Intent:           intent.Unknown,
			Location:         prev.LastLocation,
			QueryText:        utterance,
			KeepQueryContext: true,
		})
		return p.finish(ctx, Response{Response: textResponse(UnknownIntentMessage), Source: SourceClarification, Intent: intent.Unknown})

	case intent.OffTopic:
		p.store.Update(sessionID, conversation.UpdateParams{
			Intent:    intent.OffTopic,
			Location:  prev.LastLocation,
			QueryText: utterance,
		})
		return p.finish(ctx, Response{Response: textResponse(followup.RedirectMessage), Source: SourceRedirect, Intent: intent.OffTopic})
	}

	if classification.Intent.RequiresLocation() && loc.Location == "" {
		msg := MissingLocationMessage
		if loc.Scope == location.ScopeCurrentLocation {
			msg = CurrentLocationMessage
		}
		return p.finish(ctx, Response{Response: textResponse(msg), Source: SourceClarification, Intent: classification.Intent})
	}

	return p.search(ctx, sessionID, utterance, classification.Intent, loc.Location)
}

// understand classifies and extracts a location concurrently. Neither step fails.
func (p *AssistantProcessor) understand(ctx context.Context, utterance string) (intent.Classification, location.Info) {
	var (
		classification intent.Classification
		loc            location.Info
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		classification = p.classifier.Classify(utterance)
		return nil
	})
	g.Go(func() error {
		loc = p.locations.Extract(gctx, utterance)
		return nil
	})
	_ = g.Wait()

	return classification, loc
}

func (p *AssistantProcessor) search(ctx context.Context, sessionID, utterance string, in intent.Intent, loc string) Response {
	query := BuildQuery(in, loc, utterance)
	ctx = observability.WithFields(ctx, observability.Field{Key: "search_query", Value: query})

	if entry, ok := p.cache.Get(ctx, query); ok {
		// the cached results become this session's query context, replacing any
		// earlier search, so follow-ups refer to what the caller just heard
		p.store.Update(sessionID, conversation.UpdateParams{
			Intent:    in,
			Location:  loc,
			QueryText: utterance,
			Response:  entry.Response,
			Results:   entry.Results,
		})
		return p.finish(ctx, Response{Response: entry.Response, Source: SourceCache, Intent: in, Location: loc})
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.searchTimeout)
	start := time.Now()
	results, err := p.searcher.Search(searchCtx, query)
	cancel()
	observability.RecordSearch(time.Since(start), err)

	if err != nil {
		p.logger.Error(ctx, "search failed, using fallback", err)
		return p.fallbackResponse(ctx, sessionID, utterance, in, loc)
	}

	if len(results) == 0 {
		p.store.Update(sessionID, conversation.UpdateParams{Intent: in, Location: loc, QueryText: utterance})
		return p.finish(ctx, Response{Response: textResponse(NoResultsMessage), Source: SourceSearch, Intent: in, Location: loc})
	}

	results = topResults(results)
	resp := formatResults(in, loc, results)

	p.cache.Set(ctx, query, cache.Entry{Response: resp, Results: results, CachedAt: time.Now()})
	p.store.Update(sessionID, conversation.UpdateParams{
		Intent:    in,
		Location:  loc,
		QueryText: utterance,
		Response:  resp,
		Results:   results,
	})

	return p.finish(ctx, Response{Response: resp, Source: SourceSearch, Intent: in, Location: loc})
}

func (p *AssistantProcessor) fallbackResponse(ctx context.Context, sessionID, utterance string, in intent.Intent, loc string) Response {
	p.store.Update(sessionID, conversation.UpdateParams{Intent: in, Location: loc, QueryText: utterance})

	msg := CannedFallbackMessage
	outcome := "canned"
	if p.fallback != nil {
		genCtx, cancel := context.WithTimeout(ctx, p.fallbackTimeout)
		text, err := p.fallback.Generate(genCtx, fallbackPrompt(in, loc, utterance))
		cancel()

		if err != nil {
			p.logger.Error(ctx, "fallback generation failed, using canned response", err)
		} else if text = strings.TrimSpace(text); text != "" {
			msg = text
			outcome = "generated"
		}
	}
	observability.RecordFallback(outcome)

	return p.finish(ctx, Response{Response: textResponse(msg), Source: SourceFallback, Intent: in, Location: loc})
}

func (p *AssistantProcessor) finish(ctx context.Context, resp Response) Response {
	observability.RecordTurn(string(resp.Source))
	p.logger.Info(observability.WithFields(ctx, observability.Field{Key: "source", Value: string(resp.Source)}), "turn answered")
	return resp
}

// EndSession forgets everything about a session.
func (p *AssistantProcessor) EndSession(ctx context.Context, sessionID string) {
	p.store.Clear(sessionID)
	p.logger.Info(observability.WithFields(ctx, observability.Field{Key: "session_id", Value: sessionID}), "session cleared")
}
