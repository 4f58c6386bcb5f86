package followup

import "regexp"

// Patterns holds the vague-reference expressions for each follow-up type.
// Expressions are compiled case-insensitively.
type Patterns struct {
	SendDetails    []string
	LocationInfo   []string
	PhoneInfo      []string
	SpecificResult []string
	General        []string
	// FreshQuery marks an utterance that opens a new topic. Anything that is
	// neither a reference nor a fresh query is a general follow-up.
	FreshQuery     []string
}

// DefaultPatterns returns the built-in reference vocabulary.
func DefaultPatterns() Patterns {
	return Patterns{
		SendDetails: []string{
			`\b(send|text|message|sms|email)\b.*\b(me|that|it|this|them|those|these|info|information|details|list|everything)\b`,
			`\bcan i get (that|this|it|them) (by|in a|as a) (text|message)\b`,
		},
		LocationInfo: []string{
			`\baddress(es)?\b`,
			`\blocated\b`,
			`\bwhere\s+(is|are)\s+(it|they|that|this|those|these|the\s+\w+)\b`,
			`\b(directions|how\s+do\s+i\s+get\s+there)\b`,
		},
		PhoneInfo: []string{
			`\b(phone|number|numbers)\b`,
			`\bcall\s+(them|it|that|the\s+\w+|there)\b`,
			`\bcontact\s+(info|information|details)\b`,
			`\bhow\s+(do|can)\s+i\s+(reach|contact)\b`,
		},
		SpecificResult: []string{
			`\b(first|second|third|fourth|fifth|last|1st|2nd|3rd)\s+(one|result|shelter|place|option)\b`,
			`\bthe\s+(first|second|third|fourth|fifth|last)\b`,
			`\bthat\s+one\b`,
			`\b(tell\s+me\s+(more\s+)?about|what\s+about|more\s+on)\b`,
		},
		General: []string{
			`\b(tell\s+me\s+more|more\s+(info|information|details)|what\s+else|anything\s+else)\b`,
			`\b(are|is)\s+(they|it|that|those)\s+(open|available|free|safe|close|far|good)\b`,
			`\btheir\s+(hours|website|services|details|info)\b`,
			`^\s*(ok|okay|thanks|thank\s+you|got\s+it)\b`,
		},
		FreshQuery: []string{
			`\b(i\s+need|i\s+want|i'?m\s+looking|looking\s+for|search\s+for|find\s+(me\s+)?(a|an|some)|is\s+there\s+(a|an|any))\b`,
			`\b(shelters?|lawyers?|attorneys?|legal|custody|divorce|protective\s+order|restraining\s+order|hotline|counsel(ing|or)|housing)\b`,
			`\b(partner|husband|wife|boyfriend|girlfriend|abuser?|abused|abusive|hurt|hits?|beat|scared|afraid|danger|unsafe|threat\w*|stalk\w*|harass\w*)\b`,
			`\b(signs?\s+of|warning\s+signs|safety\s+plan|what\s+is\s+(domestic|abuse))\b`,
		},
	}
}

func compileAll(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return compiled
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
