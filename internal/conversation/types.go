package conversation

import (
	"time"

	"dv-relay/internal/intent"
)

// FollowUpWindow is how long stored results can be referenced by a follow-up.
const FollowUpWindow = 5 * time.Minute

// Response is the same answer rendered for each channel.
type Response struct {
	Voice string `json:"voice_response"`
	SMS   string `json:"sms_response"`
	Web   string `json:"web_response"`
}

// QueryContext snapshots a turn that produced search results.
type QueryContext struct {
	Intent        intent.Intent `json:"intent"`
	Location      string        `json:"location,omitempty"`
	Results       []ResultItem  `json:"results"`
	Timestamp     time.Time     `json:"timestamp"`
	VoiceResponse string        `json:"voice_response"`
	SMSResponse   string        `json:"sms_response"`
}

// Expired reports whether the snapshot is outside the follow-up window.
func (q *QueryContext) Expired(now time.Time, window time.Duration) bool {
	return q == nil || now.Sub(q.Timestamp) > window
}

// Context is the per-session conversational memory.
type Context struct {
	SessionID        string        `json:"session_id"`
	LastIntent       intent.Intent `json:"last_intent"`
	LastLocation     string        `json:"last_location,omitempty"`
	LastQueryText    string        `json:"last_query_text"`
	LastQueryContext *QueryContext `json:"last_query_context,omitempty"`
	Timestamp        time.Time     `json:"timestamp"`
}

// UpdateParams carries one turn's worth of changes for Store.Update.
type UpdateParams struct {
	Intent    intent.Intent
	Location  string
	QueryText string
	Response  Response
	Results   []ResultItem
	// KeepQueryContext leaves the stored results untouched. Follow-ups set it
	// so the snapshot they answered from survives the turn.
	KeepQueryContext bool
}
