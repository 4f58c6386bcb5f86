package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrEmptyEnvironmentVariable = errors.New("empty environment variable")
	ErrInvalidFallbackProvider  = errors.New("invalid fallback provider")
)

const (
	FallbackProviderOpenAI = "openai"
	FallbackProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Twilio    TwilioConfig
	Services  ServicesConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Assistant AssistantConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int
	PublicURL string // externally visible base URL, used for Twilio signatures
	WebAppURI string
}

// TwilioConfig holds Twilio credentials
type TwilioConfig struct {
	AccountSID        string
	AuthToken         string
	PhoneNumber       string
	ValidateSignature bool
}

// Enabled reports whether outbound SMS can be sent.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.PhoneNumber != ""
}

// ServicesConfig holds external service API keys and configuration
type ServicesConfig struct {
	TavilyAPIKey      string
	OpenAIAPIKey      string
	OpenAIModel       string
	GoogleAIAPIKey    string
	FallbackProvider  string
	GeocoderURL       string
	GeocoderUserAgent string
}

// RedisConfig holds Redis connection settings. Redis is optional.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig bounds turns per caller. Zero disables limiting.
type RateLimitConfig struct {
	PerMinute int
}

// AssistantConfig holds conversation timings and cache sizes
type AssistantConfig struct {
	FollowUpWindow    time.Duration
	SessionTTL        time.Duration
	SearchTimeout     time.Duration
	GeocodeTimeout    time.Duration
	FallbackTimeout   time.Duration
	ResponseCacheSize int
	ResponseCacheTTL  time.Duration
	SweepSchedule     string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error

	// Server configuration
	if cfg.Server.Port, err = requireInt("SERVER_PORT"); err != nil {
		return nil, err
	}
	cfg.Server.PublicURL = strings.TrimRight(getEnvWithDefault("PUBLIC_URL", ""), "/")
	cfg.Server.WebAppURI = getEnvWithDefault("WEBAPP_URI", "")

	// Twilio configuration
	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.PhoneNumber = os.Getenv("TWILIO_PHONE_NUMBER")
	if cfg.Twilio.ValidateSignature, err = getBool("TWILIO_VALIDATE_SIGNATURE", true); err != nil {
		return nil, err
	}
	if cfg.Twilio.ValidateSignature && cfg.Twilio.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is required when TWILIO_VALIDATE_SIGNATURE is set: %w", ErrEmptyEnvironmentVariable)
	}

	// Services configuration
	if cfg.Services.TavilyAPIKey, err = requireEnv("TAVILY_API_KEY"); err != nil {
		return nil, err
	}
	cfg.Services.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Services.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")
	cfg.Services.GoogleAIAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.Services.FallbackProvider = strings.ToLower(getEnvWithDefault("AI_FALLBACK_PROVIDER", FallbackProviderOpenAI))
	switch cfg.Services.FallbackProvider {
	case FallbackProviderOpenAI, FallbackProviderGemini:
	default:
		return nil, fmt.Errorf("AI_FALLBACK_PROVIDER=%q: %w", cfg.Services.FallbackProvider, ErrInvalidFallbackProvider)
	}
	cfg.Services.GeocoderURL = getEnvWithDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	cfg.Services.GeocoderUserAgent = getEnvWithDefault("GEOCODER_USER_AGENT", "dv-relay/1.0")

	// Redis configuration
	if cfg.Redis.Enabled, err = getBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = getInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// Rate limit configuration
	if cfg.RateLimit.PerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	// Assistant configuration
	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"FOLLOW_UP_WINDOW", 5 * time.Minute, &cfg.Assistant.FollowUpWindow},
		{"SESSION_TTL", 30 * time.Minute, &cfg.Assistant.SessionTTL},
		{"SEARCH_TIMEOUT", 8 * time.Second, &cfg.Assistant.SearchTimeout},
		{"GEOCODE_TIMEOUT", 5 * time.Second, &cfg.Assistant.GeocodeTimeout},
		{"FALLBACK_TIMEOUT", 8 * time.Second, &cfg.Assistant.FallbackTimeout},
		{"RESPONSE_CACHE_TTL", time.Hour, &cfg.Assistant.ResponseCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}
	if cfg.Assistant.ResponseCacheSize, err = getInt("RESPONSE_CACHE_SIZE", 500); err != nil {
		return nil, err
	}
	cfg.Assistant.SweepSchedule = getEnvWithDefault("SWEEP_SCHEDULE", "@every 1m")

	return cfg, nil
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

func requireInt(key string) (int, error) {
	value, err := requireEnv(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
