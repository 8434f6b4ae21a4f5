package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Recommendation thresholds for the insight rules below.
const (
	staleContactDays    = 7
	lowSuccessRate      = 40
	effectiveRateMin    = 70
	effectiveAttemptMin = 3
)

// insights evaluates the recommendation rules in definition order so the
// output is deterministic for a given metrics value.
func insights(m Metrics) []string {
	var out []string

	if m.TotalAttempts == 0 {
		out = append(out, "Aún no hay intentos de contacto registrados para este caso.")
		return out
	}

	if !math.IsInf(m.DaysSinceLastContact, 1) && m.DaysSinceLastContact >= staleContactDays {
		out = append(out, fmt.Sprintf("Sin contacto hace %.0f días; conviene retomar el seguimiento.", m.DaysSinceLastContact))
	}

	if unused := unusedChannels(m.ContactsByChannel); len(unused) > 0 {
		out = append(out, "Canales sin utilizar: "+strings.Join(unused, ", ")+".")
	}

	if m.SuccessRate < lowSuccessRate {
		out = append(out, fmt.Sprintf("Tasa de éxito baja (%.0f%%); considere cambiar de canal o de horario.", m.SuccessRate))
	}

	if m.SuccessRate >= effectiveRateMin && m.TotalAttempts >= effectiveAttemptMin {
		out = append(out, "Alta efectividad de contacto; mantenga la estrategia actual.")
	}

	return out
}

func unusedChannels(c ChannelCounts) []string {
	var unused []string
	if c.WhatsApp == 0 {
		unused = append(unused, "WhatsApp")
	}
	if c.Phone == 0 {
		unused = append(unused, "teléfono")
	}
	if c.Telegram == 0 {
		unused = append(unused, "Telegram")
	}
	return unused
}
