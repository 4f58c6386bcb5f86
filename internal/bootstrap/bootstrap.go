package bootstrap

import (
	"context"
	"fmt"

	"dv-relay/internal/cache"
	"dv-relay/internal/config"
	"dv-relay/internal/conversation"
	"dv-relay/internal/followup"
	"dv-relay/internal/intent"
	"dv-relay/internal/location"
	"dv-relay/internal/observability"
	"dv-relay/internal/ratelimit"

	assistantHandler "dv-relay/internal/assistant/handler"
	assistantProcessor "dv-relay/internal/assistant/processor"
	"dv-relay/internal/clients/googleai"
	"dv-relay/internal/clients/nominatim"
	"dv-relay/internal/clients/openai"
	"dv-relay/internal/clients/redis"
	"dv-relay/internal/clients/tavily"
	voiceCallHandler "dv-relay/internal/voicecall/handler"
	voiceCallProcessor "dv-relay/internal/voicecall/processor"
	"dv-relay/internal/voicecall/twilio"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Logger    *observability.Logger
	Redis     *redis.Client
	Store     *conversation.Store
	Cache     *cache.ResponseCache
	Assistant *assistantProcessor.AssistantProcessor

	// Handlers
	AssistantHandler assistantHandler.Handler
	VoiceCallHandler voiceCallHandler.Handler

	// Middleware. SignatureValidator is nil when validation is off.
	SignatureValidator *twilio.SignatureValidator
	RateLimiter        *ratelimit.Service

	// Background workers
	Sweeper *conversation.Sweeper

	gemini *googleai.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	var err error
	deps.Redis, err = redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Initialize clients
	searcher, err := tavily.NewClient(cfg.Services.TavilyAPIKey, "", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	geocoder := nominatim.NewClient(cfg.Services.GeocoderURL, cfg.Services.GeocoderUserAgent)

	fallback, err := deps.newFallbackGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize conversation state
	deps.Store = conversation.NewStore(logger,
		conversation.WithSessionTTL(cfg.Assistant.SessionTTL),
		conversation.WithFollowUpWindow(cfg.Assistant.FollowUpWindow),
	)
	deps.Sweeper = conversation.NewSweeper(deps.Store, logger, cfg.Assistant.SweepSchedule)
	deps.Cache = cache.NewResponseCache(cfg.Assistant.ResponseCacheSize, cfg.Assistant.ResponseCacheTTL, deps.Redis, logger)

	// Initialize assistant processor and handler
	deps.Assistant = assistantProcessor.New(assistantProcessor.Dependencies{
		Store:      deps.Store,
		FollowUps:  followup.NewResolver(followup.DefaultPatterns(), cfg.Assistant.FollowUpWindow),
		Classifier: intent.NewClassifier(),
		Locations: location.NewResolver(location.DefaultConfig(), logger,
			location.WithGeocoder(geocoder),
			location.WithGeocodeTimeout(cfg.Assistant.GeocodeTimeout),
		),
		Cache:    deps.Cache,
		Searcher: searcher,
		Fallback: fallback,
	}, assistantProcessor.Config{
		SearchTimeout:   cfg.Assistant.SearchTimeout,
		FallbackTimeout: cfg.Assistant.FallbackTimeout,
	}, logger)
	deps.AssistantHandler = assistantHandler.New(deps.Assistant, logger)

	// Initialize voice call processor and handler
	var messenger voiceCallProcessor.Messenger
	if cfg.Twilio.Enabled() {
		messenger = twilio.NewMessenger(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, logger)
	} else {
		logger.Warn(ctx, "Twilio credentials not set, outbound SMS disabled")
	}
	voiceCallProc := voiceCallProcessor.NewVoiceCallProcessor(deps.Assistant, messenger, logger)
	deps.VoiceCallHandler = voiceCallHandler.New(voiceCallProc, logger)

	if cfg.Twilio.ValidateSignature {
		deps.SignatureValidator = twilio.NewSignatureValidator(cfg.Twilio.AuthToken, cfg.Server.PublicURL, logger)
	}

	// A disabled Redis client leaves the limiter on local buckets.
	var limiterStore ratelimit.RedisStore
	if deps.Redis.IsEnabled() {
		limiterStore = deps.Redis
	}
	deps.RateLimiter = ratelimit.NewService(limiterStore, cfg.RateLimit.PerMinute, logger)

	return deps, nil
}

// newFallbackGenerator picks the configured AI provider. Without a key the
// assistant falls back to a canned message.
func (d *Dependencies) newFallbackGenerator(ctx context.Context, cfg *config.Config, logger *observability.Logger) (assistantProcessor.FallbackGenerator, error) {
	switch cfg.Services.FallbackProvider {
	case config.FallbackProviderGemini:
		if cfg.Services.GoogleAIAPIKey == "" {
			break
		}
		client, err := googleai.NewClient(ctx, cfg.Services.GoogleAIAPIKey, "", assistantProcessor.FallbackSystemPrompt, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		d.gemini = client
		return client, nil

	default:
		if cfg.Services.OpenAIAPIKey == "" {
			break
		}
		client, err := openai.NewClient(openai.Config{
			APIKey: cfg.Services.OpenAIAPIKey,
			Model:  cfg.Services.OpenAIModel,
			System: assistantProcessor.FallbackSystemPrompt,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return client, nil
	}

	logger.Warn(ctx, "no AI fallback provider configured, using canned fallback responses")
	return nil, nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx := context.Background()

	if d.Store != nil {
		d.Store.Destroy()
	}
	if err := d.gemini.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close gemini client", err)
	}
	if err := d.Redis.Close(); err != nil {
		d.Logger.Error(ctx, "failed to close redis client", err)
	}
}
