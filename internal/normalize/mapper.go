// Package normalize turns raw upstream rows into the canonical contact
// and case model. Every function here is total: malformed input degrades
// to the named defaults in rules.go, it never returns an error.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// Mapper derives canonical entities from raw records. The clock is
// injected so unparsable-date fallbacks are deterministic under test.
type Mapper struct {
	now func() time.Time
}

func New(now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{now: now}
}

var (
	// The greeting is matched case-insensitively but the captured words
	// must carry uppercase initials, so trailing prose after a single
	// name is not swallowed into it.
	nameRe      = regexp.MustCompile(`(?i:hola)\s+([A-ZÁ-ÚÑ][a-zá-úñ]+(?:\s+[A-ZÁ-ÚÑ][a-zá-úñ]+)?)`)
	timestampRe = regexp.MustCompile(`(?i)\[\d{1,2}:\d{2}\s+[AP]M\]\s*`)
	botPrefixRe = regexp.MustCompile(`(?i)nexo bot:\s*`)
)

// matchRules walks a rule table top-down over already-lowercased text and
// returns the first hit, or fallback when nothing matches.
func matchRules[T any](lower string, rules []rule[T], fallback T) T {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.value
			}
		}
	}
	return fallback
}

// Outcome classifies a conversation body. Empty text means the contact
// went through without remarks, which counts as successful.
func Outcome(text string) domain.Outcome {
	if text == "" {
		return domain.OutcomeSuccessful
	}
	return matchRules(strings.ToLower(text), outcomeRules, domain.OutcomeSuccessful)
}

// Channel maps an upstream source tag onto a canonical channel. Total:
// unknown sources land on whatsapp rather than failing.
func Channel(source domain.Source) domain.Channel {
	switch source {
	case domain.SourceWhatsApp:
		return domain.ChannelWhatsApp
	case domain.SourcePhoneCall:
		return domain.ChannelPhone
	case domain.SourceMail:
		return domain.ChannelEmail
	case domain.SourceTelegram:
		return domain.ChannelTelegram
	default:
		return domain.ChannelWhatsApp
	}
}

// Note cleans a conversation body for display: the first chat timestamp
// and bot prefix are stripped, long bodies are truncated.
func Note(text string) string {
	if text == "" {
		return DefaultNote
	}
	text = stripFirst(timestampRe, text)
	text = stripFirst(botPrefixRe, text)
	if runes := []rune(text); len(runes) > noteMaxRunes {
		return string(runes[:noteMaxRunes]) + "..."
	}
	return text
}

func stripFirst(re *regexp.Regexp, s string) string {
	if loc := re.FindStringIndex(s); loc != nil {
		return s[:loc[0]] + s[loc[1]:]
	}
	return s
}

// ParticipantLabel pulls a greeting name out of the conversation body,
// falling back to a generic label for the record's side of the case.
func ParticipantLabel(text string, userType domain.UserType) string {
	if m := nameRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if userType == domain.UserApplicant {
		return LabelApplicant
	}
	return LabelRespondent
}

// parseTime parses the upstream timestamp leniently; unparsable values
// degrade to the injected clock's now.
func (m *Mapper) parseTime(s string) time.Time {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return m.now()
	}
	return t
}

// MapRecord derives one contact attempt from one raw record. The caller
// is responsible for filtering invalid case numbers first; see MapRecords.
func (m *Mapper) MapRecord(rec domain.ConversationRecord) domain.ContactAttempt {
	text := rec.Text()
	return domain.ContactAttempt{
		ID:               fmt.Sprintf("%s-%s-%s", rec.CaseNuc, rec.ChatID, rec.CreatedAt),
		CaseID:           rec.CaseNuc.String(),
		Channel:          Channel(rec.Source),
		OccurredAt:       m.parseTime(rec.CreatedAt),
		Outcome:          Outcome(text),
		Note:             Note(text),
		ParticipantLabel: ParticipantLabel(text, rec.UserType),
	}
}

// MapRecords drops records without a valid case number, then maps the
// survivors in their original order (stable filter, not a sort).
func (m *Mapper) MapRecords(recs []domain.ConversationRecord) []domain.ContactAttempt {
	attempts := make([]domain.ContactAttempt, 0, len(recs))
	for _, rec := range recs {
		if !rec.CaseNuc.Valid {
			continue
		}
		attempts = append(attempts, m.MapRecord(rec))
	}
	return attempts
}
