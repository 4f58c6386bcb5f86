package location

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"dv-relay/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	calls atomic.Int32
	data  *GeocodeData
	err   error
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (*GeocodeData, error) {
	f.calls.Add(1)
	return f.data, f.err
}

func newTestResolver(opts ...Option) *Resolver {
	return NewResolver(DefaultConfig(), observability.NewNopLogger(), opts...)
}

func TestExtract(t *testing.T) {
	resolver := newTestResolver()

	tests := []struct {
		name         string
		text         string
		wantLocation string
		wantScope    Scope
	}{
		{name: "current location", text: "I need help near me", wantScope: ScopeCurrentLocation},
		{name: "nearby", text: "are there any shelters nearby?", wantScope: ScopeCurrentLocation},
		{name: "trailing preposition", text: "shelter near", wantScope: ScopeIncomplete},
		{name: "trailing preposition with punctuation", text: "I need a shelter in?", wantScope: ScopeIncomplete},
		{name: "explicit city", text: "I need a shelter in Austin", wantLocation: "Austin", wantScope: ScopeUnknown},
		{name: "multi word city", text: "find shelter in San Francisco", wantLocation: "San Francisco", wantScope: ScopeUnknown},
		{name: "lowercase speech", text: "um i need a shelter in austin", wantLocation: "austin", wantScope: ScopeUnknown},
		{name: "trailing time word", text: "safe place in Denver tonight", wantLocation: "Denver", wantScope: ScopeUnknown},
		{name: "inner preposition", text: "I'm in danger and need a shelter in Houston", wantLocation: "Houston", wantScope: ScopeUnknown},
		{name: "distance", text: "shelters within 10 miles of Boise", wantLocation: "Boise", wantScope: ScopeUnknown},
		{name: "state makes it complete", text: "shelter in Springfield, Illinois", wantLocation: "Springfield, Illinois", wantScope: ScopeComplete},
		{name: "state code makes it complete", text: "shelter in Springfield, IL", wantLocation: "Springfield, IL", wantScope: ScopeComplete},
		{name: "gazetteer", text: "Seattle shelters please", wantLocation: "Seattle", wantScope: ScopeUnknown},
		{name: "service prefix", text: "shelter homes Tacoma", wantLocation: "Tacoma", wantScope: ScopeUnknown},
		{name: "stop words only", text: "I am in danger", wantScope: ScopeNone},
		{name: "nothing", text: "what are the signs of abuse", wantScope: ScopeNone},
		{name: "empty", text: "   ", wantScope: ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Extract(context.Background(), tt.text)
			assert.Equal(t, tt.wantScope, got.Scope)
			assert.Equal(t, tt.wantLocation, got.Location)
			assert.Equal(t, tt.wantScope == ScopeComplete, got.IsComplete)
		})
	}
}

func TestExtract_SanFranciscoContainsCity(t *testing.T) {
	got := newTestResolver().Extract(context.Background(), "find shelter in San Francisco")

	assert.Contains(t, strings.ToLower(got.Location), "san francisco")
	assert.Equal(t, ScopeUnknown, got.Scope)
	assert.Nil(t, got.Geocode)
}

func TestStripFillers_OnlyAtStart(t *testing.T) {
	resolver := newTestResolver()

	assert.Equal(t, "a shelter", resolver.stripFillers("Hi, I need a shelter"))
	assert.Equal(t, "shelter for people who say i need help", resolver.stripFillers("shelter for people who say i need help"))
	// "so" must not be stripped from the front of "somewhere".
	assert.Equal(t, "somewhere safe", resolver.stripFillers("somewhere safe"))
}

func TestExtract_GeocoderMarksComplete(t *testing.T) {
	geocoder := &fakeGeocoder{data: &GeocodeData{City: "Austin", State: "Texas", Country: "United States", CountryCode: "us"}}
	resolver := newTestResolver(WithGeocoder(geocoder))

	got := resolver.Extract(context.Background(), "I need a shelter in Austin")

	assert.Equal(t, ScopeComplete, got.Scope)
	assert.True(t, got.IsComplete)
	require.NotNil(t, got.Geocode)
	assert.Equal(t, "Texas", got.Geocode.State)
}

func TestExtract_GeocodeCachedByNormalizedKey(t *testing.T) {
	geocoder := &fakeGeocoder{data: &GeocodeData{City: "Austin"}}
	resolver := newTestResolver(WithGeocoder(geocoder))

	resolver.Extract(context.Background(), "shelter in Austin")
	resolver.Extract(context.Background(), "shelter in austin")

	assert.Equal(t, int32(1), geocoder.calls.Load())
}

func TestExtract_GeocoderFailureFallsBack(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("connection refused")}
	resolver := newTestResolver(WithGeocoder(geocoder))

	got := resolver.Extract(context.Background(), "shelter in Austin, TX")
	assert.Equal(t, "Austin, TX", got.Location)
	assert.Equal(t, ScopeComplete, got.Scope)
	assert.Nil(t, got.Geocode)

	got = resolver.Extract(context.Background(), "shelter in Austin, TX")
	assert.Equal(t, ScopeComplete, got.Scope)
	// Failures are not cached.
	assert.Equal(t, int32(2), geocoder.calls.Load())
}

func TestExtract_EmptyGeocodeUsesStaticLookup(t *testing.T) {
	geocoder := &fakeGeocoder{data: &GeocodeData{Lat: 1, Lng: 2}}
	resolver := newTestResolver(WithGeocoder(geocoder))

	got := resolver.Extract(context.Background(), "shelter in Austin")

	assert.Equal(t, ScopeUnknown, got.Scope)
	assert.False(t, got.IsComplete)
}

func TestLooksComplete(t *testing.T) {
	assert.True(t, looksComplete("Portland, Oregon"))
	assert.True(t, looksComplete("Toronto, Canada"))
	assert.True(t, looksComplete("Reno, NV"))
	assert.False(t, looksComplete("Reno, ZZ"))
	assert.False(t, looksComplete("Austin"))
	assert.False(t, looksComplete(""))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "san francisco", NormalizeKey("  San Francisco "))
}
