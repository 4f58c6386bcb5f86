package followup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"dv-relay/internal/conversation"
	"dv-relay/internal/intent"
)

// Type discriminates follow-up outcomes.
type Type string

const (
	OffTopic        Type = "off_topic"
	SendDetails     Type = "send_details"
	LocationInfo    Type = "location_info"
	PhoneInfo       Type = "phone_info"
	SpecificResult  Type = "specific_result"
	GeneralFollowUp Type = "general_follow_up"
)

// RedirectMessage steers an off-topic conversation back to the supported domain.
const RedirectMessage = "I'm here to help with domestic violence support, like finding a shelter, legal help, or information about abuse. What can I help you with?"

// Result is a follow-up answered from stored results.
type Result struct {
	Type     Type
	Response conversation.Response
	// Item is set for SpecificResult.
	Item *conversation.ResultItem
}

var ordinals = map[string]int{
	"first": 0, "1st": 0, "second": 1, "2nd": 1, "third": 2, "3rd": 2, "fourth": 3, "fifth": 4,
}

var (
	ordinalPattern = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth|last|1st|2nd|3rd)\b`)
	tokenPattern   = regexp.MustCompile(`[a-z0-9']+`)
)

// titleNoise never counts toward a title match.
var titleNoise = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "about": {}, "tell": {}, "more": {}, "what": {}, "that": {},
	"one": {}, "shelter": {}, "shelters": {}, "center": {}, "services": {}, "women": {}, "house": {},
	"home": {}, "place": {}, "with": {}, "from": {}, "this": {}, "them": {}, "they": {},
}

// Resolver decides whether an utterance refers back to the previous turn's results.
// It makes no external calls; the answer depends only on its inputs.
type Resolver struct {
	window   time.Duration
	send     []*regexp.Regexp
	location []*regexp.Regexp
	phone    []*regexp.Regexp
	specific []*regexp.Regexp
	general  []*regexp.Regexp
	fresh    []*regexp.Regexp
}

// NewResolver compiles the pattern sets. A zero window uses conversation.FollowUpWindow.
func NewResolver(p Patterns, window time.Duration) *Resolver {
	if window <= 0 {
		window = conversation.FollowUpWindow
	}
	return &Resolver{
		window:   window,
		send:     compileAll(p.SendDetails),
		location: compileAll(p.LocationInfo),
		phone:    compileAll(p.PhoneInfo),
		specific: compileAll(p.SpecificResult),
		general:  compileAll(p.General),
		fresh:    compileAll(p.FreshQuery),
	}
}

// Resolve returns nil when the utterance should be treated as a fresh query:
// there is no stored context, it is older than the window, or the utterance
// opens a new topic (FreshQuery) without a reference to the previous answer.
// Everything else within the window is at least a general follow-up.
func (r *Resolver) Resolve(utterance string, qc *conversation.QueryContext, now time.Time) *Result {
	if qc == nil || qc.Expired(now, r.window) {
		return nil
	}

	if qc.Intent == intent.OffTopic {
		return &Result{Type: OffTopic, Response: sameEverywhere(RedirectMessage)}
	}

	text := strings.TrimSpace(utterance)
	if text == "" {
		return nil
	}

	switch {
	case matchesAny(text, r.send):
		return sendDetails(qc)
	case matchesAny(text, r.location):
		return locationInfo(qc)
	case matchesAny(text, r.phone):
		return phoneInfo(qc)
	}

	if matchesAny(text, r.specific) || mentionsTitle(text, qc.Results) {
		if item := matchResult(text, qc.Results); item != nil {
			return specificResult(item)
		}
	}

	if matchesAny(text, r.fresh) {
		return nil
	}
	return generalFollowUp(qc)
}

func sendDetails(qc *conversation.QueryContext) *Result {
	voice := fmt.Sprintf("I'm sending the %s to your phone by text message now.", deliverable(qc.Intent))
	return &Result{
		Type: SendDetails,
		Response: conversation.Response{
			Voice: voice,
			SMS:   qc.SMSResponse,
			Web:   qc.SMSResponse,
		},
	}
}

func locationInfo(qc *conversation.QueryContext) *Result {
	lines := make([]string, 0, len(qc.Results))
	for i, item := range qc.Results {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, item.DisplayName(), item.AddressOrPlaceholder()))
	}
	return &Result{Type: LocationInfo, Response: enumerate("Here are the addresses I have:", lines)}
}

func phoneInfo(qc *conversation.QueryContext) *Result {
	lines := make([]string, 0, len(qc.Results))
	for i, item := range qc.Results {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, item.DisplayName(), item.PhoneOrPlaceholder()))
	}
	return &Result{Type: PhoneInfo, Response: enumerate("Here are the phone numbers I have:", lines)}
}

func specificResult(item *conversation.ResultItem) *Result {
	name := item.DisplayName()
	voice := fmt.Sprintf("%s. Phone: %s. Address: %s.", name, item.PhoneOrPlaceholder(), item.AddressOrPlaceholder())

	text := voice
	if item.URL != "" {
		text += " More info: " + item.URL
	}
	return &Result{
		Type:     SpecificResult,
		Item:     item,
		Response: conversation.Response{Voice: voice, SMS: text, Web: text},
	}
}

func generalFollowUp(qc *conversation.QueryContext) *Result {
	where := ""
	if qc.Location != "" {
		where = " in " + qc.Location
	}
	msg := fmt.Sprintf(
		"I found %d %s%s. You can ask for their addresses or phone numbers, or say \"send me that\" to get the details by text.",
		len(qc.Results), deliverable(qc.Intent), where,
	)
	return &Result{Type: GeneralFollowUp, Response: sameEverywhere(msg)}
}

// matchResult picks an item by ordinal, then by title overlap. A lone result
// satisfies "that one".
func matchResult(text string, results []conversation.ResultItem) *conversation.ResultItem {
	if len(results) == 0 {
		return nil
	}

	if m := ordinalPattern.FindStringSubmatch(text); m != nil {
		word := strings.ToLower(m[1])
		idx := len(results) - 1
		if word != "last" {
			idx = ordinals[word]
		}
		if idx < len(results) {
			return &results[idx]
		}
		return nil
	}

	lower := strings.ToLower(text)
	bestIdx, bestOverlap := -1, 0
	for i, item := range results {
		title := strings.ToLower(conversation.CleanTitle(item.Title))
		if title == "" {
			continue
		}
		if strings.Contains(lower, title) {
			return &results[i]
		}
		if overlap := tokenOverlap(lower, title); overlap > bestOverlap {
			bestIdx, bestOverlap = i, overlap
		}
	}
	if bestIdx >= 0 {
		return &results[bestIdx]
	}

	if len(results) == 1 && strings.Contains(lower, "that one") {
		return &results[0]
	}
	return nil
}

// mentionsTitle needs the whole title or two distinctive title words, so a fresh
// query that shares a city name with a title is not mistaken for a reference.
func mentionsTitle(text string, results []conversation.ResultItem) bool {
	lower := strings.ToLower(text)
	for _, item := range results {
		title := strings.ToLower(conversation.CleanTitle(item.Title))
		if title != "" && (strings.Contains(lower, title) || tokenOverlap(lower, title) >= 2) {
			return true
		}
	}
	return false
}

// tokenOverlap counts distinctive title words (three letters or more) present in text.
func tokenOverlap(text, title string) int {
	words := make(map[string]struct{})
	for _, w := range tokenPattern.FindAllString(text, -1) {
		words[w] = struct{}{}
	}

	overlap := 0
	for _, w := range tokenPattern.FindAllString(title, -1) {
		if len(w) < 3 {
			continue
		}
		if _, noise := titleNoise[w]; noise {
			continue
		}
		if _, ok := words[w]; ok {
			overlap++
		}
	}
	return overlap
}

func deliverable(i intent.Intent) string {
	switch i {
	case intent.FindShelter:
		return "shelter options"
	case intent.LegalHelp:
		return "legal resources"
	case intent.GetInfo:
		return "information resources"
	default:
		return "resources"
	}
}

func enumerate(header string, lines []string) conversation.Response {
	if len(lines) == 0 {
		return sameEverywhere(header + " " + conversation.NotAvailable + ".")
	}
	return conversation.Response{
		Voice: header + " " + strings.Join(lines, ". ") + ".",
		SMS:   header + "\n" + strings.Join(lines, "\n"),
		Web:   header + "\n" + strings.Join(lines, "\n"),
	}
}

func sameEverywhere(msg string) conversation.Response {
	return conversation.Response{Voice: msg, SMS: msg, Web: msg}
}
