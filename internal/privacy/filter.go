package privacy

import (
	"regexp"
	"strings"
)

// privateTagRegex matches <private>...</private> blocks (non-greedy, dotall).
var privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

var (
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// North American style numbers: 480-000-0000, (480) 000 0000, +1 480.000.0000
	phoneRegex = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// Redacted replaces contact details in quoted text.
const Redacted = "[redacted]"

// StripPrivateTags removes all <private>...</private> blocks from content.
func StripPrivateTags(content string) string {
	return strings.TrimSpace(privateTagRegex.ReplaceAllString(content, ""))
}

// HasOnlyPrivateContent reports whether nothing remains after stripping.
func HasOnlyPrivateContent(content string) bool {
	return StripPrivateTags(content) == ""
}

// RedactContact replaces e-mail addresses and phone numbers.
func RedactContact(content string) string {
	content = emailRegex.ReplaceAllString(content, Redacted)
	return phoneRegex.ReplaceAllString(content, Redacted)
}

// CleanQuote prepares participant text for an external model.
func CleanQuote(content string) string {
	content = RedactContact(StripPrivateTags(content))
	return strings.TrimSpace(spaceRegex.ReplaceAllString(content, " "))
}

// SelectQuotes cleans texts and keeps the first max distinct non-empty ones
// in input order. A max of zero or less keeps all.
func SelectQuotes(texts []string, max int) []string {
	seen := make(map[string]bool, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		q := CleanQuote(t)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
