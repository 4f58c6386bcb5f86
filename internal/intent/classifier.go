package intent

import (
	"strings"

	"dv-relay/internal/patterns"
)

// Intent is the fixed set of things a caller can be asking for.
type Intent string

const (
	FindShelter Intent = "find_shelter"
	GetInfo     Intent = "get_info"
	LegalHelp   Intent = "legal_help"
	OffTopic    Intent = "off_topic"
	Unknown     Intent = "unknown"
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// RequiresLocation reports whether a search for this intent needs a place to search in.
func (i Intent) RequiresLocation() bool {
	return i == FindShelter
}

// Classification is the result of classifying one utterance.
type Classification struct {
	Intent          Intent
	Confidence      float64
	MatchedPatterns []string
}

// keywordWeight is added to an intent's confidence for every literal keyword it contains.
const keywordWeight = 0.2

type rule struct {
	intent   Intent
	keywords []string
	table    patterns.Table
}

// Classifier maps utterances to intents with keyword and pattern scoring.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []rule
}

// NewClassifier builds a classifier over the fixed category tables. Rule order
// breaks ties, so shelter requests win over general information requests.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []rule{
			{
				intent: FindShelter,
				keywords: []string{
					"shelter", "safe place", "safe house", "place to stay", "somewhere to stay",
					"somewhere to go", "emergency housing", "housing", "a bed",
				},
				table: patterns.NewTable(shelterCategory, resourceCategory, locationCategory),
			},
			{
				intent: LegalHelp,
				keywords: []string{
					"lawyer", "attorney", "legal", "restraining order", "protective order",
					"protection order", "custody", "divorce", "court",
				},
				table: patterns.NewTable(legalCategory, contactCategory),
			},
			{
				intent: GetInfo,
				keywords: []string{
					"information", "what is", "what are", "signs of", "domestic violence",
					"abuse", "hotline", "counseling", "support group", "safety plan",
				},
				table: patterns.NewTable(informationCategory, generalCategory, contactCategory),
			},
			{
				intent: OffTopic,
				keywords: []string{
					"joke", "weather", "sports", "recipe", "movie", "song", "game score",
				},
				table: patterns.NewTable(offTopicCategory),
			},
		},
	}
}

// Classify returns the highest scoring intent. Only an utterance with no evidence
// at all maps to Unknown; a weak but nonzero score keeps its intent label.
func (c *Classifier) Classify(text string) Classification {
	best := Classification{Intent: Unknown, MatchedPatterns: []string{}}
	if strings.TrimSpace(text) == "" {
		return best
	}

	lower := strings.ToLower(text)
	for _, r := range c.rules {
		score := patterns.Score(text, r.table)
		confidence := score.Confidence
		matched := score.MatchedPatterns
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				confidence += keywordWeight
				matched = append(matched, "keyword:"+keyword)
			}
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence > best.Confidence {
			best = Classification{Intent: r.intent, Confidence: confidence, MatchedPatterns: matched}
		}
	}

	return best
}
