package policy

import "regexp"

// redactor holds the compiled PII patterns used by Policy.Redact. Each
// pattern is compiled once at construction and reused across calls.
type redactor struct {
	email   *regexp.Regexp
	phone   *regexp.Regexp
	card    *regexp.Regexp
	ssn     *regexp.Regexp
	ip      *regexp.Regexp
	apiKey  *regexp.Regexp
}

func newRedactor() *redactor {
	return &redactor{
		email:  regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		phone:  regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		card:   regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`),
		ssn:    regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		ip:     regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		apiKey: regexp.MustCompile(`\b(?:sk|pk|api|key)[-_][A-Za-z0-9]{16,}\b`),
	}
}

// redact scrubs every recognized PII pattern in text, replacing matches
// with a category placeholder. Card numbers are only redacted when they
// pass a Luhn check, to avoid over-redacting ordinary long digit runs
// (order IDs, phone extensions).
func (r *redactor) redact(text string) string {
	text = r.email.ReplaceAllString(text, "[REDACTED_EMAIL]")
	text = r.apiKey.ReplaceAllString(text, "[REDACTED_KEY]")
	text = r.ssn.ReplaceAllString(text, "[REDACTED_SSN]")
	text = r.card.ReplaceAllStringFunc(text, func(match string) string {
		if looksLikeCard(match) {
			return "[REDACTED_CARD]"
		}
		return match
	})
	text = r.phone.ReplaceAllString(text, "[REDACTED_PHONE]")
	text = r.ip.ReplaceAllString(text, "[REDACTED_IP]")
	return text
}

// looksLikeCard applies the Luhn checksum to the digits in s.
func looksLikeCard(s string) bool {
	var digits []int
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
