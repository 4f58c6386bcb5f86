package followup

import (
	"testing"
	"time"

	"dv-relay/internal/conversation"
	"dv-relay/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func shelterContext(age time.Duration) *conversation.QueryContext {
	return &conversation.QueryContext{
		Intent:   intent.FindShelter,
		Location: "Austin",
		Results: []conversation.ResultItem{
			{
				Title:   "[Austin, TX] SafePlace - Shelters.org",
				URL:     "https://example.org/safeplace",
				Content: "Emergency shelter. Call (512) 267-7233 or visit 1515 Grove Blvd, Austin, TX 78741.",
				Score:   0.9,
			},
			{
				Title:   "[Austin, TX] Hope Alliance Family Center",
				Content: "Counseling and advocacy for survivors.",
				Score:   0.7,
			},
		},
		Timestamp:     now.Add(-age),
		VoiceResponse: "I found 2 shelters in Austin.",
		SMSResponse:   "Shelters near Austin:\n1. SafePlace (512) 267-7233",
	}
}

func newTestResolver() *Resolver {
	return NewResolver(DefaultPatterns(), 0)
}

func TestResolve_LocationInfo(t *testing.T) {
	got := newTestResolver().Resolve("What's the address?", shelterContext(time.Minute), now)

	require.NotNil(t, got)
	assert.Equal(t, LocationInfo, got.Type)
	assert.Contains(t, got.Response.Web, "SafePlace")
	assert.Contains(t, got.Response.Web, "Hope Alliance Family Center")
	assert.NotContains(t, got.Response.Web, "[Austin, TX]")
	assert.Contains(t, got.Response.Web, "1515 Grove Blvd")
	assert.Contains(t, got.Response.Web, conversation.NotAvailable)
}

func TestResolve_SendDetails(t *testing.T) {
	qc := shelterContext(time.Minute)

	got := newTestResolver().Resolve("Can you send that to me?", qc, now)

	require.NotNil(t, got)
	assert.Equal(t, SendDetails, got.Type)
	assert.Equal(t, qc.SMSResponse, got.Response.SMS)
	assert.Contains(t, got.Response.Voice, "shelter options")
}

func TestResolve_PhoneInfo(t *testing.T) {
	got := newTestResolver().Resolve("What's their phone number?", shelterContext(time.Minute), now)

	require.NotNil(t, got)
	assert.Equal(t, PhoneInfo, got.Type)
	assert.Contains(t, got.Response.Voice, "SafePlace: (512) 267-7233")
	assert.Contains(t, got.Response.Voice, "Hope Alliance Family Center: "+conversation.NotAvailable)
}

func TestResolve_StaleContext(t *testing.T) {
	resolver := newTestResolver()
	stale := shelterContext(6 * time.Minute)

	for _, utterance := range []string{"What's the address?", "Can you send that to me?", "tell me more", "the first one"} {
		assert.Nil(t, resolver.Resolve(utterance, stale, now), utterance)
	}
}

func TestResolve_NoContext(t *testing.T) {
	assert.Nil(t, newTestResolver().Resolve("What's the address?", nil, now))
}

func TestResolve_OffTopicContext(t *testing.T) {
	qc := shelterContext(time.Minute)
	qc.Intent = intent.OffTopic

	got := newTestResolver().Resolve("anything", qc, now)

	require.NotNil(t, got)
	assert.Equal(t, OffTopic, got.Type)
	assert.Equal(t, RedirectMessage, got.Response.Voice)
}

func TestResolve_SpecificResult(t *testing.T) {
	resolver := newTestResolver()
	qc := shelterContext(time.Minute)

	tests := []struct {
		name      string
		utterance string
		wantTitle string
	}{
		{name: "ordinal", utterance: "tell me about the second one", wantTitle: qc.Results[1].Title},
		{name: "last", utterance: "what about the last one", wantTitle: qc.Results[1].Title},
		{name: "title", utterance: "tell me about SafePlace", wantTitle: qc.Results[0].Title},
		{name: "title words without trigger", utterance: "is hope alliance good for kids", wantTitle: qc.Results[1].Title},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.utterance, qc, now)
			require.NotNil(t, got)
			assert.Equal(t, SpecificResult, got.Type)
			require.NotNil(t, got.Item)
			assert.Equal(t, tt.wantTitle, got.Item.Title)
		})
	}
}

func TestResolve_SpecificResultDetails(t *testing.T) {
	got := newTestResolver().Resolve("the first one", shelterContext(time.Minute), now)

	require.NotNil(t, got)
	assert.Equal(t, "SafePlace. Phone: (512) 267-7233. Address: 1515 Grove Blvd, Austin, TX 78741.", got.Response.Voice)
	assert.Contains(t, got.Response.SMS, "https://example.org/safeplace")
}

func TestResolve_OrdinalOutOfRangeFallsThrough(t *testing.T) {
	got := newTestResolver().Resolve("the fifth one", shelterContext(time.Minute), now)

	require.NotNil(t, got)
	assert.Equal(t, GeneralFollowUp, got.Type)
}

func TestResolve_GeneralFollowUp(t *testing.T) {
	got := newTestResolver().Resolve("tell me more", shelterContext(time.Minute), now)

	require.NotNil(t, got)
	assert.Equal(t, GeneralFollowUp, got.Type)
	assert.Contains(t, got.Response.Voice, "2 shelter options in Austin")
}

func TestResolve_FreshQuery(t *testing.T) {
	resolver := newTestResolver()
	qc := shelterContext(time.Minute)

	for _, utterance := range []string{
		"I need a shelter in Dallas",
		"I need a shelter in Austin",
		"I need a lawyer",
		"my partner hurt me",
		"what are the signs of abuse",
	} {
		assert.Nil(t, resolver.Resolve(utterance, qc, now), utterance)
	}
}

func TestResolve_DefaultsToGeneralFollowUp(t *testing.T) {
	resolver := newTestResolver()
	qc := shelterContext(time.Minute)

	for _, utterance := range []string{"Do they accept kids?", "Are they open?", "thanks", "ok"} {
		got := resolver.Resolve(utterance, qc, now)
		require.NotNil(t, got, utterance)
		assert.Equal(t, GeneralFollowUp, got.Type, utterance)
	}
}

func TestResolve_CustomFreshQueryPatterns(t *testing.T) {
	p := DefaultPatterns()
	p.FreshQuery = []string{`\bkids\b`}
	resolver := NewResolver(p, 0)

	assert.Nil(t, resolver.Resolve("Do they accept kids?", shelterContext(time.Minute), now))
}

func TestResolve_MissingFieldsUsePlaceholders(t *testing.T) {
	qc := &conversation.QueryContext{
		Intent:    intent.FindShelter,
		Results:   []conversation.ResultItem{{}},
		Timestamp: now,
	}

	got := newTestResolver().Resolve("what's the address", qc, now)

	require.NotNil(t, got)
	assert.Contains(t, got.Response.Web, conversation.PlaceholderName+": "+conversation.NotAvailable)
}
