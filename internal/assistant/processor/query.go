package processor

import (
	"regexp"
	"strings"

	"dv-relay/internal/intent"
)

type topic struct {
	pattern *regexp.Regexp
	name    string
}

// topics are checked in order; the first match names the get_info search.
var topics = []topic{
	{regexp.MustCompile(`(?i)\bsafety\s+plan`), "safety planning"},
	{regexp.MustCompile(`(?i)\b(warning\s+)?signs\b`), "warning signs"},
	{regexp.MustCompile(`(?i)\b(restraining|protective|protection)\s+orders?\b`), "protective orders"},
	{regexp.MustCompile(`(?i)\bcustody\b`), "child custody"},
	{regexp.MustCompile(`(?i)\b(emotional|verbal|psychological)\b`), "emotional abuse"},
	{regexp.MustCompile(`(?i)\b(financial|money|economic)\b`), "financial abuse"},
	{regexp.MustCompile(`(?i)\bstalk`), "stalking"},
	{regexp.MustCompile(`(?i)\b(counsel|therap|support\s+group)`), "counseling"},
	{regexp.MustCompile(`(?i)\b(hotline|helpline)\b`), "hotline"},
	{regexp.MustCompile(`(?i)\b(leave|leaving|escape)\b`), "leaving safely"},
}

const defaultTopic = "support"

// BuildQuery renders the search query for an intent. The same inputs always
// give the same query, which is what the response cache keys on.
func BuildQuery(i intent.Intent, location, utterance string) string {
	location = strings.TrimSpace(location)

	var q string
	switch i {
	case intent.FindShelter:
		q = "domestic violence shelter " + location + " contact phone address"
	case intent.LegalHelp:
		if location == "" {
			q = "domestic violence legal aid services"
		} else {
			q = "domestic violence legal aid " + location
		}
	default:
		q = "domestic violence " + detectTopic(utterance) + " information resources"
		if location != "" {
			q += " " + location
		}
	}
	return strings.Join(strings.Fields(q), " ")
}

func detectTopic(utterance string) string {
	for _, t := range topics {
		if t.pattern.MatchString(utterance) {
			return t.name
		}
	}
	return defaultTopic
}

// fallbackPrompt asks the generator for a supportive answer when search fails.
func fallbackPrompt(i intent.Intent, location, utterance string) string {
	var b strings.Builder
	b.WriteString("A person contacted a domestic violence support line")
	switch i {
	case intent.FindShelter:
		b.WriteString(" looking for a shelter")
	case intent.LegalHelp:
		b.WriteString(" looking for legal help")
	case intent.GetInfo:
		b.WriteString(" looking for information")
	}
	if location != "" {
		b.WriteString(" in " + location)
	}
	b.WriteString(". Their message was: \"")
	b.WriteString(strings.TrimSpace(utterance))
	b.WriteString("\". Our resource search is unavailable. Reply with brief, supportive guidance.")
	return b.String()
}
