package model

// Activity is a server-owned activity record. Name is the unique key.
// The client never mutates an Activity; every view of it is re-fetched.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// SpotsLeft returns the remaining capacity for display. The server owns the
// capacity rule, so the result is not clamped and may be negative.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}
