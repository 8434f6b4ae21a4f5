// Package scoring derives an engagement score for a mediation case from
// its contact-attempt history. Compute is a pure function of its input and
// the injected clock; it has no error path and never yields NaN.
package scoring

import (
	"math"
	"time"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// Sentiment is the coarse classification shown next to the score.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Sub-score weights. They sum to 1.0; each sub-score can contribute at
// most weight*100 points to the overall score.
const (
	weightSuccess   = 0.40
	weightDiversity = 0.20
	weightRecency   = 0.25
	weightVolume    = 0.15

	// TotalChannels is the fixed channel universe counted toward
	// diversity: whatsapp, phone and telegram. Email and in-person
	// contacts still appear in the attempt list but do not add diversity.
	TotalChannels = 3

	// Recency decays linearly from full points at zero days to zero at
	// the window edge. Volume saturates linearly at the attempt cap.
	recencyWindowDays = 30
	volumeSaturation  = 10

	sentimentPositiveMin = 70
	sentimentNeutralMin  = 40
)

// SubScore reports how much one component could contribute (weight) and
// how much it actually did (points, ≤ weight×100).
type SubScore struct {
	Weight float64 `json:"weight"`
	Points float64 `json:"points"`
}

// Breakdown itemizes the overall score. The Spanish field names are a
// stable wire contract rendered directly by the caller.
type Breakdown struct {
	TasaExito         SubScore `json:"tasaExito"`
	DiversidadCanales SubScore `json:"diversidadCanales"`
	Recencia          SubScore `json:"recencia"`
	CantidadIntentos  SubScore `json:"cantidadIntentos"`
}

// ChannelCounts carries per-channel attempt totals for the scored universe.
type ChannelCounts struct {
	WhatsApp int `json:"whatsapp"`
	Phone    int `json:"telefono"`
	Telegram int `json:"telegram"`
}

// Metrics is the full scoring result. DaysSinceLastContact uses +Inf as
// the no-contact sentinel, so it stays off the wire; LastContact carries
// the renderable form instead.
type Metrics struct {
	TotalAttempts        int           `json:"totalAttempts"`
	SuccessRate          float64       `json:"successRate"`
	ChannelsUsed         int           `json:"channelsUsed"`
	TotalChannels        int           `json:"totalChannels"`
	DaysSinceLastContact float64       `json:"-"`
	LastContact          string        `json:"lastContact"`
	ContactsByChannel    ChannelCounts `json:"contactsByChannel"`
	Sentiment            Sentiment     `json:"sentiment"`
	OverallScore         float64       `json:"scoreGeneral"`
	Breakdown            Breakdown     `json:"scoreBreakdown"`
	Insights             []string      `json:"insights,omitempty"`
}

// Engine computes metrics against an injected clock.
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Compute scores one case's full attempt set. Safe on the empty set: all
// metrics degrade to their zero/∞ defaults.
func (e *Engine) Compute(attempts []domain.ContactAttempt) Metrics {
	m := Metrics{
		TotalAttempts:        len(attempts),
		TotalChannels:        TotalChannels,
		DaysSinceLastContact: math.Inf(1),
	}

	successful := 0
	channels := make(map[domain.Channel]struct{})
	var newest time.Time
	for _, a := range attempts {
		if a.Outcome == domain.OutcomeSuccessful || a.Outcome == domain.OutcomePositiveDisposition {
			successful++
		}
		switch a.Channel {
		case domain.ChannelWhatsApp:
			m.ContactsByChannel.WhatsApp++
			channels[a.Channel] = struct{}{}
		case domain.ChannelPhone:
			m.ContactsByChannel.Phone++
			channels[a.Channel] = struct{}{}
		case domain.ChannelTelegram:
			m.ContactsByChannel.Telegram++
			channels[a.Channel] = struct{}{}
		}
		if a.OccurredAt.After(newest) {
			newest = a.OccurredAt
		}
	}

	if m.TotalAttempts > 0 {
		m.SuccessRate = 100 * float64(successful) / float64(m.TotalAttempts)
	}
	m.ChannelsUsed = len(channels)

	if !newest.IsZero() {
		days := math.Floor(e.now().Sub(newest).Hours() / 24)
		if days < 0 {
			days = 0
		}
		m.DaysSinceLastContact = days
		m.LastContact = newest.Format(time.RFC3339)
	}

	m.Sentiment = classifySentiment(m.SuccessRate)
	m.Breakdown = breakdown(m)
	m.OverallScore = overall(m.Breakdown)
	m.Insights = insights(m)
	return m
}

func classifySentiment(successRate float64) Sentiment {
	switch {
	case successRate >= sentimentPositiveMin:
		return SentimentPositive
	case successRate >= sentimentNeutralMin:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

func breakdown(m Metrics) Breakdown {
	recency := 0.0
	if !math.IsInf(m.DaysSinceLastContact, 1) {
		recency = 100 * (1 - m.DaysSinceLastContact/recencyWindowDays)
		if recency < 0 {
			recency = 0
		}
	}

	volume := float64(m.TotalAttempts)
	if volume > volumeSaturation {
		volume = volumeSaturation
	}
	volume = 100 * volume / volumeSaturation

	diversity := 100 * float64(m.ChannelsUsed) / TotalChannels

	return Breakdown{
		TasaExito:         SubScore{Weight: weightSuccess, Points: weightSuccess * m.SuccessRate},
		DiversidadCanales: SubScore{Weight: weightDiversity, Points: weightDiversity * diversity},
		Recencia:          SubScore{Weight: weightRecency, Points: weightRecency * recency},
		CantidadIntentos:  SubScore{Weight: weightVolume, Points: weightVolume * volume},
	}
}

func overall(b Breakdown) float64 {
	sum := b.TasaExito.Points + b.DiversidadCanales.Points + b.Recencia.Points + b.CantidadIntentos.Points
	score := math.Round(sum)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
