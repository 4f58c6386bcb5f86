package processor

import (
	"regexp"
	"strings"
)

// relevanceKeywords gate the assistant to its domain. Follow-up vocabulary is
// included so "what's their number?" or "are they open?" reaches the follow-up
// resolver.
var relevanceKeywords = []string{
	"shelter", "safe", "abuse", "abusive", "abuser", "violence", "violent", "help", "support",
	"legal", "lawyer", "attorney", "court", "custody", "divorce", "order", "rights", "hotline",
	"counsel", "advocate", "housing", "stay", "sleep", "hurt", "hit", "hits", "beat", "scared",
	"afraid", "fear", "danger", "unsafe", "emergency", "police", "resource", "service",
	"information", "info", "protect", "partner", "husband", "wife", "boyfriend", "girlfriend",
	"kids", "children", "escape", "leave", "threat", "stalk", "harass", "victim", "survivor",
	"bed", "place", "near", "location", "city", "signs", "plan", "address", "phone", "number",
	"call", "send", "text", "first", "second", "third", "last", "more", "details", "where",
	"located", "that one", "contact", "open", "available", "hours", "website", "accept", "cost",
	"free", "else", "tell me more", "thank", "okay", "ok", "got it",
}

var relevancePattern = buildRelevancePattern(relevanceKeywords)

func buildRelevancePattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
}

// IsRelevant reports whether an utterance touches the supported domain.
func IsRelevant(utterance string) bool {
	return relevancePattern.MatchString(utterance)
}
