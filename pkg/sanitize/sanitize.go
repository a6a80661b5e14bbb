// Package sanitize normalizes raw payment input into a canonical shape
// before validation, and masks PII for log output. Sanitization never
// rejects; it only cleans.
package sanitize

import "strings"

// Amount strips every character that is not a digit or a decimal point.
// If more than one point survives, the input is split on the first one and
// the remaining points are dropped from the tail, so "1.2.3" becomes "1.23".
func Amount(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	head, tail, found := strings.Cut(cleaned, ".")
	if !found {
		return cleaned
	}
	return head + "." + strings.ReplaceAll(tail, ".", "")
}

// Currency trims whitespace and uppercases the code.
func Currency(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Method trims whitespace and lowercases the payment method.
func Method(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Email masks the local part down to its first two characters:
// "john.doe@example.com" -> "jo***@example.com". Local parts shorter than
// three characters are hidden entirely.
func Email(raw string) string {
	local, domain, found := strings.Cut(raw, "@")
	if !found || domain == "" {
		return "***"
	}
	if len(local) < 3 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}

// Phone masks the middle digits: "5551234567" -> "555***67". Numbers too
// short to keep a prefix and suffix are hidden entirely.
func Phone(raw string) string {
	if len(raw) <= 5 {
		return "***"
	}
	return raw[:3] + "***" + raw[len(raw)-2:]
}
