// Package domain defines the canonical entities of the mediation backend:
// raw conversation records as they arrive from the store, the normalized
// contact-attempt and mediation-case views derived from them, and the
// scoring metrics computed over a case's contact history.
package domain

import "time"

// Channel is a canonical communication channel for a contact attempt.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPhone    Channel = "phone"
	ChannelEmail    Channel = "email"
	ChannelInPerson Channel = "in-person"
	ChannelTelegram Channel = "telegram"
)

// Outcome classifies the result of a single contact attempt.
type Outcome string

const (
	OutcomeSuccessful          Outcome = "successful"
	OutcomeNoAnswer            Outcome = "no-answer"
	OutcomeDeclined            Outcome = "declined"
	OutcomeScheduled           Outcome = "scheduled"
	OutcomePositiveDisposition Outcome = "positive-disposition"
	OutcomeRefused             Outcome = "refused"
)

// CaseStatus is the lifecycle status of a mediation case.
type CaseStatus string

const (
	StatusScheduled  CaseStatus = "scheduled"
	StatusInProgress CaseStatus = "in-progress"
	StatusCompleted  CaseStatus = "completed"
	StatusCancelled  CaseStatus = "cancelled"
)

// EmotionalStatus classifies a participant's disposition toward mediation.
type EmotionalStatus string

const (
	EmotionalCooperative EmotionalStatus = "cooperative"
	EmotionalNeutral     EmotionalStatus = "neutral"
	EmotionalUnsure      EmotionalStatus = "unsure"
	EmotionalResistant   EmotionalStatus = "resistant"
)

// RelationshipType describes how the two participants are related.
type RelationshipType string

const (
	RelationshipParents    RelationshipType = "parents"
	RelationshipCaregivers RelationshipType = "caregivers"
	RelationshipGuardians  RelationshipType = "guardians"
	RelationshipOther      RelationshipType = "other"
)

// MediationType describes the subject matter of the mediation.
type MediationType string

const (
	MediationVisitation    MediationType = "visitation"
	MediationCommunication MediationType = "communication"
	MediationChildcare     MediationType = "childcare"
	MediationCoexistence   MediationType = "coexistence"
	MediationOther         MediationType = "other"
)

// ContactAttempt is one normalized contact event derived from a raw
// conversation record. It is a view: recomputed on every fetch, never
// persisted or mutated after creation.
type ContactAttempt struct {
	ID               string    `json:"id"`
	CaseID           string    `json:"caseId"`
	Channel          Channel   `json:"channel"`
	OccurredAt       time.Time `json:"date"`
	Outcome          Outcome   `json:"result"`
	Note             string    `json:"notes"`
	ParticipantLabel string    `json:"participantName,omitempty"`
}

// MediationCase aggregates the derived state of one case: participants,
// status, emotional classification and description. Like ContactAttempt it
// is recomputed per request and has no identity beyond its case number.
type MediationCase struct {
	ID               string           `json:"id"`
	ParticipantName  string           `json:"participantName"`
	ParticipantName2 string           `json:"participantName2,omitempty"`
	RUT              string           `json:"rut"`
	RUT2             string           `json:"rut2,omitempty"`
	RelationshipType RelationshipType `json:"relationshipType"`
	MediationType    MediationType    `json:"mediationType"`
	MediationDate    time.Time        `json:"mediationDate"`
	Status           CaseStatus       `json:"status"`
	Description      string           `json:"description"`
	EmotionalStatus  EmotionalStatus  `json:"emotionalStatus"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
