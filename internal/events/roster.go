// Package events defines the roster event payloads shared by the outbox and the consumer.
package events

import "time"

const (
	// TypeParticipantSignedUp is emitted after a student joins an activity roster.
	TypeParticipantSignedUp = "participant.signed_up"
	// TypeParticipantUnregistered is emitted after a student leaves an activity roster.
	TypeParticipantUnregistered = "participant.unregistered"
)

// RosterEvent describes one accepted roster transition.
type RosterEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	Activity         string    `json:"activity"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	OccurredAt       time.Time `json:"occurred_at"`
}
