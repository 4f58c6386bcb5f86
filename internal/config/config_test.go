package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("TWILIO_VALIDATE_SIGNATURE", "false")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "tvly-test", cfg.Services.TavilyAPIKey)
	assert.Equal(t, FallbackProviderOpenAI, cfg.Services.FallbackProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.Services.OpenAIModel)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, 5*time.Minute, cfg.Assistant.FollowUpWindow)
	assert.Equal(t, 30*time.Minute, cfg.Assistant.SessionTTL)
	assert.Equal(t, 8*time.Second, cfg.Assistant.SearchTimeout)
	assert.Equal(t, 500, cfg.Assistant.ResponseCacheSize)
	assert.Equal(t, "@every 1m", cfg.Assistant.SweepSchedule)
	assert.False(t, cfg.Twilio.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PUBLIC_URL", "https://relay.example.org/")
	t.Setenv("AI_FALLBACK_PROVIDER", "Gemini")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550100")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://relay.example.org", cfg.Server.PublicURL)
	assert.Equal(t, FallbackProviderGemini, cfg.Services.FallbackProvider)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 3*time.Second, cfg.Assistant.SearchTimeout)
	assert.True(t, cfg.Twilio.Enabled())
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing port",
			env:     map[string]string{"SERVER_PORT": "", "TAVILY_API_KEY": "k"},
			wantErr: ErrEmptyEnvironmentVariable,
		},
		{
			name:    "missing tavily key",
			env:     map[string]string{"SERVER_PORT": "80", "TAVILY_API_KEY": "", "TWILIO_VALIDATE_SIGNATURE": "false"},
			wantErr: ErrEmptyEnvironmentVariable,
		},
		{
			name:    "signature validation without token",
			env:     map[string]string{"SERVER_PORT": "80", "TAVILY_API_KEY": "k", "TWILIO_AUTH_TOKEN": ""},
			wantErr: ErrEmptyEnvironmentVariable,
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"SERVER_PORT": "80", "TAVILY_API_KEY": "k", "TWILIO_VALIDATE_SIGNATURE": "false", "AI_FALLBACK_PROVIDER": "llama"},
			wantErr: ErrInvalidFallbackProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromEnv_BadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "half an hour")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "SESSION_TTL")
}
