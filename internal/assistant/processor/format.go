package processor

import (
	"fmt"
	"strings"

	"dv-relay/internal/conversation"
	"dv-relay/internal/intent"
)

const (
	maxResults     = 3
	maxSnippetChar = 160
)

// topResults keeps the results a caller will hear about; follow-ups enumerate the same slice.
func topResults(results []conversation.ResultItem) []conversation.ResultItem {
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return append([]conversation.ResultItem(nil), results...)
}

func heading(i intent.Intent) string {
	switch i {
	case intent.FindShelter:
		return "shelter options"
	case intent.LegalHelp:
		return "legal resources"
	default:
		return "resources"
	}
}

// formatResults renders results for each channel. Voice stays short; SMS and web
// carry the details.
func formatResults(i intent.Intent, location string, results []conversation.ResultItem) conversation.Response {
	where := ""
	if location != "" {
		where = " in " + location
	}

	var voice strings.Builder
	fmt.Fprintf(&voice, "I found %d %s%s.", len(results), heading(i), where)
	for n, item := range results {
		fmt.Fprintf(&voice, " %d. %s", n+1, item.DisplayName())
		if phone := item.Phone(); phone != "" {
			fmt.Fprintf(&voice, ", phone %s", phone)
		}
		voice.WriteString(".")
	}
	voice.WriteString(" You can ask for their addresses or phone numbers, or say send me that to get this by text. If you are in immediate danger, call 911.")

	var sms strings.Builder
	fmt.Fprintf(&sms, "%s%s:\n", capitalize(heading(i)), where)
	for n, item := range results {
		fmt.Fprintf(&sms, "\n%d. %s\nPhone: %s\nAddress: %s\n", n+1, item.DisplayName(), item.PhoneOrPlaceholder(), item.AddressOrPlaceholder())
		if item.URL != "" {
			sms.WriteString(item.URL + "\n")
		}
	}
	sms.WriteString("\n" + HotlineLine)

	var web strings.Builder
	fmt.Fprintf(&web, "Here are %s%s:\n", heading(i), where)
	for n, item := range results {
		fmt.Fprintf(&web, "\n%d. %s\n", n+1, item.DisplayName())
		if snippet := snippet(item.Content); snippet != "" {
			web.WriteString(snippet + "\n")
		}
		fmt.Fprintf(&web, "Phone: %s\nAddress: %s\n", item.PhoneOrPlaceholder(), item.AddressOrPlaceholder())
		if item.URL != "" {
			web.WriteString(item.URL + "\n")
		}
	}
	web.WriteString("\n" + HotlineLine)

	return conversation.Response{
		Voice: voice.String(),
		SMS:   sms.String(),
		Web:   web.String(),
	}
}

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= maxSnippetChar {
		return content
	}
	cut := strings.LastIndex(content[:maxSnippetChar], " ")
	if cut <= 0 {
		cut = maxSnippetChar
	}
	return content[:cut] + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func textResponse(msg string) conversation.Response {
	return conversation.Response{Voice: msg, SMS: msg, Web: msg}
}
