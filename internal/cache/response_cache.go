package cache

import (
	"context"
	"regexp"
	"strings"
	"time"

	"dv-relay/internal/conversation"
	"dv-relay/internal/observability"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 500
	DefaultTTL  = time.Hour

	remoteKeyPrefix = "dvrelay:response:"
)

// Entry is a formatted search answer together with the results it was built from.
type Entry struct {
	Response conversation.Response     `json:"response"`
	Results  []conversation.ResultItem `json:"results"`
	CachedAt time.Time                 `json:"cached_at"`
}

// RemoteStore is a shared second tier, typically Redis.
type RemoteStore interface {
	IsEnabled() bool
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ResponseCache maps normalized search queries to answers. The memory tier is a
// bounded LRU with a fixed TTL; the optional remote tier is consulted on a local
// miss and back-fills memory. Remote errors count as misses.
type ResponseCache struct {
	local  *expirable.LRU[string, Entry]
	remote RemoteStore
	ttl    time.Duration
	logger *observability.Logger
}

// NewResponseCache creates a cache. remote may be nil.
func NewResponseCache(size int, ttl time.Duration, remote RemoteStore, logger *observability.Logger) *ResponseCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if remote != nil && !remote.IsEnabled() {
		remote = nil
	}
	return &ResponseCache{
		local:  expirable.NewLRU[string, Entry](size, nil, ttl),
		remote: remote,
		ttl:    ttl,
		logger: logger,
	}
}

// Get looks up a query. Expired entries are never returned.
func (c *ResponseCache) Get(ctx context.Context, query string) (Entry, bool) {
	key := NormalizeKey(query)
	if key == "" {
		return Entry{}, false
	}

	if entry, ok := c.local.Get(key); ok {
		observability.RecordCacheLookup(true)
		return entry, true
	}

	if c.remote != nil {
		var entry Entry
		found, err := c.remote.GetJSON(ctx, remoteKeyPrefix+key, &entry)
		if err != nil {
			c.logger.WarnWithError(ctx, "remote response cache read failed", err)
		}
		if found && err == nil {
			c.local.Add(key, entry)
			observability.RecordCacheLookup(true)
			return entry, true
		}
	}

	observability.RecordCacheLookup(false)
	return Entry{}, false
}

// Set stores an answer under the normalized query.
func (c *ResponseCache) Set(ctx context.Context, query string, entry Entry) {
	key := NormalizeKey(query)
	if key == "" {
		return
	}

	c.local.Add(key, entry)

	if c.remote != nil {
		if err := c.remote.SetJSON(ctx, remoteKeyPrefix+key, entry, c.ttl); err != nil {
			c.logger.WarnWithError(ctx, "remote response cache write failed", err)
		}
	}
}

// Len is the number of live local entries.
func (c *ResponseCache) Len() int {
	return c.local.Len()
}

// Purge empties the local tier.
func (c *ResponseCache) Purge() {
	c.local.Purge()
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeKey lowercases, trims and collapses whitespace.
func NormalizeKey(query string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(query)), " ")
}
