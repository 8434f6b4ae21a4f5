// Package voice triggers ElevenLabs outbound calls for mediation cases
// and ingests the post-call webhook results.
package voice

import (
	"regexp"
	"strings"
)

var (
	nonDialRe  = regexp.MustCompile(`[^\d+]`)
	allDigitRe = regexp.MustCompile(`^\d{8,15}$`)
)

// NormalizePhone coerces a raw phone value into E.164. Chilean numbers
// are assumed: a bare mobile starting with 9 gets the +56 prefix. Values
// that cannot be normalized are returned as-is; empty input yields "".
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	phone = nonDialRe.ReplaceAllString(phone, "")
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		return phone
	}

	if strings.HasPrefix(phone, "56") {
		return "+" + phone
	}

	if strings.HasPrefix(phone, "9") && len(phone) >= 8 {
		return "+56" + phone
	}

	if allDigitRe.MatchString(phone) {
		return "+56" + phone
	}

	return phone
}
