package domain

import "slices"

// Activity is an extracurricular offering with a capacity and an ordered participant roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Clone returns a deep copy so callers never share the roster slice with the store.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft is the remaining capacity; it is negative when the roster has been overfilled.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}
