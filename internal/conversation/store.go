package conversation

import (
	"context"
	"sync"
	"time"

	"dv-relay/internal/observability"
)

const defaultSessionTTL = 30 * time.Minute

// Store owns every session's Context. All mutation goes through Update, Clear and Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Context
	locks    map[string]*sessionLock

	window time.Duration
	ttl    time.Duration
	now    func() time.Time
	logger *observability.Logger
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithSessionTTL sets how long an idle session survives a sweep.
func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithFollowUpWindow overrides FollowUpWindow.
func WithFollowUpWindow(window time.Duration) StoreOption {
	return func(s *Store) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(logger *observability.Logger, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Context),
		locks:    make(map[string]*sessionLock),
		window:   FollowUpWindow,
		ttl:      defaultSessionTTL,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Window is the follow-up window in effect.
func (s *Store) Window() time.Duration {
	return s.window
}

// Get returns a copy of the session's context. A query context older than the
// follow-up window is cleared in place before returning.
func (s *Store) Get(sessionID string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return Context{}, false
	}

	if c.LastQueryContext != nil && c.LastQueryContext.Expired(s.now(), s.window) {
		c.LastQueryContext = nil
	}

	return c.clone(), true
}

// Update records a turn. Intent, location and query text are always replaced.
// The query context is replaced when results are present, kept when
// KeepQueryContext is set, and cleared otherwise.
func (s *Store) Update(sessionID string, p UpdateParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.sessions[sessionID]
	if !ok {
		c = &Context{SessionID: sessionID}
		s.sessions[sessionID] = c
	}

	c.LastIntent = p.Intent
	c.LastLocation = p.Location
	c.LastQueryText = p.QueryText
	c.Timestamp = now

	switch {
	case p.KeepQueryContext:
	case len(p.Results) > 0:
		c.LastQueryContext = &QueryContext{
			Intent:        p.Intent,
			Location:      p.Location,
			Results:       append([]ResultItem(nil), p.Results...),
			Timestamp:     now,
			VoiceResponse: p.Response.Voice,
			SMSResponse:   p.Response.SMS,
		}
	default:
		c.LastQueryContext = nil
	}
}

// Clear removes a session entirely. Used when a call ends.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// Lock serializes turns for one session. The returned func releases it.
func (s *Store) Lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// Sweep drops sessions idle longer than the session TTL and clears expired
// query contexts on the rest. It returns the number of sessions removed.
func (s *Store) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, c := range s.sessions {
		if now.Sub(c.Timestamp) > s.ttl {
			delete(s.sessions, id)
			removed++
			continue
		}
		if c.LastQueryContext != nil && c.LastQueryContext.Expired(now, s.window) {
			c.LastQueryContext = nil
		}
	}

	if removed > 0 {
		s.logger.Info(observability.WithFields(ctx,
			observability.Field{Key: "sessions_removed", Value: removed},
			observability.Field{Key: "sessions_remaining", Value: len(s.sessions)},
		), "swept idle sessions")
	}
	return removed
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Destroy drops all sessions. The store stays usable.
func (s *Store) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*Context)
}

func (c *Context) clone() Context {
	out := *c
	if c.LastQueryContext != nil {
		qc := *c.LastQueryContext
		qc.Results = append([]ResultItem(nil), c.LastQueryContext.Results...)
		out.LastQueryContext = &qc
	}
	return out
}
