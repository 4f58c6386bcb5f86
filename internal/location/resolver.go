package location

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"dv-relay/internal/observability"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Scope classifies how usable an extracted location is for a search.
type Scope string

const (
	ScopeComplete        Scope = "complete"
	ScopeIncomplete      Scope = "incomplete"
	ScopeCurrentLocation Scope = "current-location"
	ScopeUnknown         Scope = "unknown"
	ScopeNone            Scope = "none"
)

const (
	// GeocodeCacheTTL is how long a successful geocode stays cached.
	GeocodeCacheTTL = 24 * time.Hour

	defaultGeocodeCacheSize = 1000
	defaultGeocodeTimeout   = 5 * time.Second
	minCandidateLength      = 2
)

// GeocodeData is what a geocoder knows about a place.
type GeocodeData struct {
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
}

func (g GeocodeData) isComplete() bool {
	return g.City != "" || g.State != "" || g.Country != ""
}

// Info is the result of extracting a location from an utterance. An empty
// Location means none was found.
type Info struct {
	Location   string       `json:"location,omitempty"`
	Scope      Scope        `json:"scope"`
	IsComplete bool         `json:"is_complete"`
	Geocode    *GeocodeData `json:"geocode,omitempty"`
}

// Geocoder validates and enriches a location phrase.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*GeocodeData, error)
}

var (
	incompletePattern = regexp.MustCompile(`(?i)\b(in|near|at|around|within|close to|nearest to|by|outside of)\s*[?.!,]*\s*$`)

	// explicitPatterns are tried in order. Group 1 is the candidate.
	explicitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwithin\s+\d+\s+(?:miles?|mi|km|kilometers?)\s+(?:of|from)\s+([^?!;\n]+)`),
		regexp.MustCompile(`(?i)\b(?:in|near|at|around|close to|nearest to|outside of|by)\s+([^?!;\n]+)`),
	}

	servicePattern = regexp.MustCompile(`(?i:\b(?:shelters?|homes?|housing|services|resources|centers?)(?:\s+homes?)?)\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)`)

	capitalizedPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,\s*[A-Z]{2}|[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)

	innerPrepositionPattern = regexp.MustCompile(`(?i)\s(?:in|near|at|around|close to|by)\s`)
	clauseBreakPattern      = regexp.MustCompile(`(?i)\s(?:and|but|because|so|for|with|who|that|where|since|if|please|tonight|today|right now|asap)\b`)
	leadingNoisePattern     = regexp.MustCompile(`(?i)^(?:(?:the|a|an|some|any|all|several|many|few|downtown|city of|town of|area of)\s+)+`)
	trailingNoisePattern    = regexp.MustCompile(`(?i)(?:\s+(?:area|region|shelters?|homes?|houses?|centers?|services|resources|downtown))+$`)
	trailingPunctPattern    = regexp.MustCompile(`[\s.,:;!?'"\-]+$`)
)

var errNoGeocodeData = errors.New("geocoder returned no data")

// Resolver extracts a location phrase from free text. The heuristic order is
// fillers, current location, incomplete phrases, explicit patterns, then the gazetteer.
type Resolver struct {
	geocoder Geocoder
	cache    *expirable.LRU[string, GeocodeData]
	timeout  time.Duration
	logger   *observability.Logger

	fillers         []string
	currentLocation []*regexp.Regexp
	stopWords       map[string]struct{}
	cities          []string
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithGeocoder enables geocode validation. A nil geocoder is ignored.
func WithGeocoder(g Geocoder) Option {
	return func(r *Resolver) {
		if g != nil {
			r.geocoder = g
		}
	}
}

// WithGeocodeTimeout bounds each geocoder call.
func WithGeocodeTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewResolver builds a resolver over the given word lists.
func NewResolver(cfg Config, logger *observability.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cache:     expirable.NewLRU[string, GeocodeData](defaultGeocodeCacheSize, nil, GeocodeCacheTTL),
		timeout:   defaultGeocodeTimeout,
		logger:    logger,
		stopWords: make(map[string]struct{}, len(cfg.StopWords)),
	}

	r.fillers = append([]string(nil), cfg.Fillers...)
	sort.SliceStable(r.fillers, func(i, j int) bool { return len(r.fillers[i]) > len(r.fillers[j]) })

	for _, phrase := range cfg.CurrentLocationPhrases {
		r.currentLocation = append(r.currentLocation, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	for _, w := range cfg.StopWords {
		r.stopWords[strings.ToLower(w)] = struct{}{}
	}

	r.cities = make([]string, 0, len(cfg.Cities))
	for _, c := range cfg.Cities {
		r.cities = append(r.cities, strings.ToLower(c))
	}
	sort.SliceStable(r.cities, func(i, j int) bool { return len(r.cities[i]) > len(r.cities[j]) })

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract never fails: geocoder errors fall back to the static completeness lookup.
func (r *Resolver) Extract(ctx context.Context, text string) Info {
	text = r.stripFillers(strings.TrimSpace(text))
	if text == "" {
		return Info{Scope: ScopeNone}
	}

	for _, re := range r.currentLocation {
		if re.MatchString(text) {
			return Info{Scope: ScopeCurrentLocation}
		}
	}

	if incompletePattern.MatchString(text) {
		return Info{Scope: ScopeIncomplete}
	}

	candidate := r.findCandidate(text)
	if candidate == "" {
		return Info{Scope: ScopeNone}
	}

	return r.validate(ctx, candidate)
}

// stripFillers removes conversational openers from the start only, longest first.
func (r *Resolver) stripFillers(text string) string {
	for {
		stripped := false
		for _, filler := range r.fillers {
			if len(text) < len(filler) || !strings.EqualFold(text[:len(filler)], filler) {
				continue
			}
			if len(text) > len(filler) && isWordByte(text[len(filler)]) {
				continue
			}
			text = strings.TrimLeft(text[len(filler):], " ,.!?-")
			stripped = true
			break
		}
		if !stripped || text == "" {
			return text
		}
	}
}

func (r *Resolver) findCandidate(text string) string {
	for _, re := range explicitPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if c := r.clean(lastSegment(m[1])); c != "" {
				return c
			}
		}
	}

	for _, m := range servicePattern.FindAllStringSubmatch(text, -1) {
		if c := r.clean(m[1]); c != "" {
			return c
		}
	}

	lower := strings.ToLower(text)
	for _, city := range r.cities {
		if i := phraseIndex(lower, city); i >= 0 {
			if len(lower) == len(text) {
				return text[i : i+len(city)]
			}
			return city
		}
	}

	for _, m := range capitalizedPattern.FindAllStringSubmatch(text, -1) {
		if c := r.clean(m[1]); c != "" {
			return c
		}
	}
	return ""
}

// lastSegment keeps what follows the last inner preposition, so
// "the area near Austin" yields "Austin".
func lastSegment(candidate string) string {
	locs := innerPrepositionPattern.FindAllStringIndex(candidate, -1)
	if len(locs) == 0 {
		return candidate
	}
	return candidate[locs[len(locs)-1][1]:]
}

func (r *Resolver) clean(candidate string) string {
	if loc := clauseBreakPattern.FindStringIndex(candidate); loc != nil {
		candidate = candidate[:loc[0]]
	}
	candidate = strings.TrimSpace(candidate)
	candidate = leadingNoisePattern.ReplaceAllString(candidate, "")
	candidate = trailingNoisePattern.ReplaceAllString(candidate, "")
	candidate = trailingPunctPattern.ReplaceAllString(candidate, "")
	candidate = strings.Join(strings.Fields(candidate), " ")

	if len(candidate) < minCandidateLength {
		return ""
	}
	if r.stopWordDominated(candidate) {
		return ""
	}
	return candidate
}

func (r *Resolver) stopWordDominated(candidate string) bool {
	words := strings.Fields(strings.ToLower(candidate))
	if len(words) == 0 {
		return true
	}
	stop := 0
	for _, w := range words {
		if _, ok := r.stopWords[strings.Trim(w, ".,'")]; ok {
			stop++
		}
	}
	return float64(stop)/float64(len(words)) > 0.5
}

func (r *Resolver) validate(ctx context.Context, candidate string) Info {
	info := Info{Location: candidate, Scope: ScopeUnknown}

	if data, ok := r.geocode(ctx, candidate); ok && data.isComplete() {
		info.Scope = ScopeComplete
		info.IsComplete = true
		info.Geocode = &data
		return info
	}

	if looksComplete(candidate) {
		info.Scope = ScopeComplete
		info.IsComplete = true
	}
	return info
}

func (r *Resolver) geocode(ctx context.Context, candidate string) (GeocodeData, bool) {
	if r.geocoder == nil {
		return GeocodeData{}, false
	}

	key := NormalizeKey(candidate)
	if data, ok := r.cache.Get(key); ok {
		observability.RecordGeocode("cached")
		return data, true
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "location", Value: candidate})
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.geocoder.Geocode(callCtx, candidate)
	if err != nil || data == nil {
		if err == nil {
			err = errNoGeocodeData
		}
		r.logger.WarnWithError(ctx, "geocoding failed, using static lookup", err)
		observability.RecordGeocode("error")
		return GeocodeData{}, false
	}

	r.cache.Add(key, *data)
	observability.RecordGeocode("ok")
	return *data, true
}

// NormalizeKey lowercases and trims a location for cache lookups.
func NormalizeKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
