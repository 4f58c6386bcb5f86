package conversation

import (
	"regexp"
	"strings"
)

const (
	// PlaceholderName stands in for a result with no usable title.
	PlaceholderName = "this resource"
	// NotAvailable stands in for a detail that could not be extracted.
	NotAvailable = "Not available"
)

// ResultItem is one search hit. Title and Content are free text.
type ResultItem struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

var (
	phonePattern     = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	addressPattern   = regexp.MustCompile(`\b\d{1,6}\s+(?:[A-Z0-9][A-Za-z0-9.']*\s+){0,5}(?i:street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|way|court|ct|place|pl|parkway|pkwy|highway|hwy|circle|cir|trail|trl)\b\.?(?:,\s*[A-Za-z]+(?:\s[A-Za-z]+)*){0,2}(?:\s+\d{5})?`)
	bracketTagPrefix = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)
	suffixPattern    = regexp.MustCompile(`\s+[-|]\s+[^-|]+$`)
)

// CleanTitle strips a leading "[City, ST]" tag and a trailing " - Site Name".
func CleanTitle(title string) string {
	title = bracketTagPrefix.ReplaceAllString(title, "")
	title = suffixPattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// DisplayName is the cleaned title, or a placeholder.
func (r ResultItem) DisplayName() string {
	if name := CleanTitle(r.Title); name != "" {
		return name
	}
	return PlaceholderName
}

// Phone returns the first phone number in the content or title, or "".
func (r ResultItem) Phone() string {
	if m := phonePattern.FindString(r.Content); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(phonePattern.FindString(r.Title))
}

// Address returns the first street address in the content, or "".
func (r ResultItem) Address() string {
	return strings.TrimSpace(addressPattern.FindString(r.Content))
}

// PhoneOrPlaceholder is Phone with NotAvailable for misses.
func (r ResultItem) PhoneOrPlaceholder() string {
	if p := r.Phone(); p != "" {
		return p
	}
	return NotAvailable
}

// AddressOrPlaceholder is Address with NotAvailable for misses.
func (r ResultItem) AddressOrPlaceholder() string {
	if a := r.Address(); a != "" {
		return a
	}
	return NotAvailable
}
