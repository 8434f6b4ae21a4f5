// Package notify sends appointment reminders to case participants over
// Telegram and the WhatsApp relay.
package notify

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/wakai-center/wakai-backend/internal/core/domain"
)

// Fallbacks for reminder fields the source rows may lack.
const (
	FallbackName     = "Sin nombre"
	FallbackLocation = "Centro de Mediación"
	FallbackDate     = "fecha por confirmar"
	FallbackTime     = "hora por confirmar"
)

// Appointment is the data rendered into a reminder message.
type Appointment struct {
	Nombre string `json:"nombre"`
	Fecha  string `json:"fecha"`
	Hora   string `json:"hora"`
	Lugar  string `json:"lugar"`
}

// FormatAppointment builds reminder data from raw case fields. Dates are
// rendered DD/MM/YYYY and HH:MM; unparsable dates degrade to the named
// fallbacks rather than failing.
func FormatAppointment(fullName, sessionDate, location string) Appointment {
	a := Appointment{
		Nombre: fullName,
		Fecha:  FallbackDate,
		Hora:   FallbackTime,
		Lugar:  location,
	}

	if a.Nombre == "" {
		a.Nombre = FallbackName
	}

	if a.Lugar == "" {
		a.Lugar = FallbackLocation
	}

	if t, err := dateparse.ParseAny(sessionDate); err == nil {
		a.Fecha = t.Format("02/01/2006")
		a.Hora = t.Format("15:04")
	}

	return a
}

// Message renders the reminder text sent to participants.
func (a Appointment) Message() string {
	return fmt.Sprintf(
		"Recordatorio de mediación familiar\n\nHola %s, le recordamos su cita de mediación:\n\nFecha: %s\nHora: %s\nLugar: %s\n\nSi no puede asistir, por favor contacte a su centro de mediación.",
		a.Nombre, a.Fecha, a.Hora, a.Lugar,
	)
}

// CaseLocation composes the hearing location from a case's center fields,
// falling back to the generic label when none are present.
func CaseLocation(rec domain.CaseRecord) string {
	var parts []string

	if rec.CenterAddress != "" {
		parts = append(parts, rec.CenterAddress)
	}

	if rec.CenterCommune != "" {
		parts = append(parts, rec.CenterCommune)
	}

	if rec.CenterRegion != "" {
		parts = append(parts, rec.CenterRegion)
	}

	if len(parts) == 0 {
		return FallbackLocation
	}

	return strings.Join(parts, ", ")
}
