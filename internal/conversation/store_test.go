package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"dv-relay/internal/intent"
	"dv-relay/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testResults() []ResultItem {
	return []ResultItem{
		{Title: "[Austin, TX] SafePlace - Shelters.org", Content: "Call (512) 267-7233. 1515 Grove Blvd, Austin, TX 78741", Score: 0.9},
		{Title: "Hope Alliance", Content: "24/7 hotline", Score: 0.7},
	}
}

func TestStore_UpdateThenGet(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(observability.NewNopLogger(), WithClock(clock.Now))

	store.Update("s1", UpdateParams{
		Intent:    intent.FindShelter,
		Location:  "Austin",
		QueryText: "I need a shelter in Austin",
		Response:  Response{Voice: "voice", SMS: "sms", Web: "web"},
		Results:   testResults(),
	})

	got, ok := store.Get("s1")
	require.True(t, ok)
	assert.Equal(t, intent.FindShelter, got.LastIntent)
	assert.Equal(t, "Austin", got.LastLocation)
	assert.Equal(t, "I need a shelter in Austin", got.LastQueryText)
	require.NotNil(t, got.LastQueryContext)
	assert.Len(t, got.LastQueryContext.Results, 2)
	assert.Equal(t, "sms", got.LastQueryContext.SMSResponse)
	assert.Equal(t, "voice", got.LastQueryContext.VoiceResponse)
	assert.Equal(t, clock.Now(), got.LastQueryContext.Timestamp)
}

func TestStore_QueryContextExpiresAfterWindow(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(observability.NewNopLogger(), WithClock(clock.Now))
	store.Update("s1", UpdateParams{Intent: intent.FindShelter, Results: testResults()})

	clock.Advance(FollowUpWindow)
	got, _ := store.Get("s1")
	assert.NotNil(t, got.LastQueryContext, "exactly at the window boundary is still valid")

	clock.Advance(time.Second)
	got, ok := store.Get("s1")
	require.True(t, ok)
	assert.Nil(t, got.LastQueryContext)
	assert.Equal(t, intent.FindShelter, got.LastIntent)
}

func TestStore_EmptyResultsClearQueryContext(t *testing.T) {
	store := NewStore(observability.NewNopLogger())
	store.Update("s1", UpdateParams{Intent: intent.FindShelter, Results: testResults()})

	store.Update("s1", UpdateParams{Intent: intent.GetInfo, QueryText: "what is abuse"})

	got, _ := store.Get("s1")
	assert.Nil(t, got.LastQueryContext)
	assert.Equal(t, intent.GetInfo, got.LastIntent)
}

func TestStore_KeepQueryContext(t *testing.T) {
	store := NewStore(observability.NewNopLogger())
	store.Update("s1", UpdateParams{Intent: intent.FindShelter, Location: "Austin", Results: testResults()})

	store.Update("s1", UpdateParams{
		Intent:           intent.FindShelter,
		Location:         "Austin",
		QueryText:        "what's the address",
		KeepQueryContext: true,
	})

	got, _ := store.Get("s1")
	require.NotNil(t, got.LastQueryContext)
	assert.Equal(t, "what's the address", got.LastQueryText)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(observability.NewNopLogger())
	store.Update("s1", UpdateParams{Intent: intent.FindShelter, Results: testResults()})

	got, _ := store.Get("s1")
	got.LastQueryContext.Results[0].Title = "mutated"
	got.LastIntent = intent.OffTopic

	again, _ := store.Get("s1")
	assert.Equal(t, intent.FindShelter, again.LastIntent)
	assert.NotEqual(t, "mutated", again.LastQueryContext.Results[0].Title)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(observability.NewNopLogger())
	store.Update("s1", UpdateParams{Intent: intent.FindShelter})
	store.Update("s2", UpdateParams{Intent: intent.GetInfo})

	store.Clear("s1")

	_, ok := store.Get("s1")
	assert.False(t, ok)
	_, ok = store.Get("s2")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(observability.NewNopLogger(), WithClock(clock.Now), WithSessionTTL(10*time.Minute))

	store.Update("old", UpdateParams{Intent: intent.FindShelter, Results: testResults()})
	clock.Advance(7 * time.Minute)
	store.Update("recent", UpdateParams{Intent: intent.FindShelter, Results: testResults()})
	clock.Advance(4 * time.Minute)

	removed := store.Sweep(context.Background())

	assert.Equal(t, 1, removed)
	_, ok := store.Get("old")
	assert.False(t, ok)
	recent, ok := store.Get("recent")
	require.True(t, ok)
	assert.NotNil(t, recent.LastQueryContext)
}

func TestStore_Destroy(t *testing.T) {
	store := NewStore(observability.NewNopLogger())
	store.Update("s1", UpdateParams{Intent: intent.FindShelter})

	store.Destroy()

	assert.Zero(t, store.Len())
	store.Update("s2", UpdateParams{Intent: intent.FindShelter})
	assert.Equal(t, 1, store.Len())
}

func TestStore_LockSerializesSession(t *testing.T) {
	store := NewStore(observability.NewNopLogger())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("s1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	store.mu.Lock()
	assert.Empty(t, store.locks)
	store.mu.Unlock()
}
