package model

// Message is the single status message shown to the user.
type Message struct {
	Text     string
	Severity Severity
}

// ParticipantRow is one participant entry with its removal control.
type ParticipantRow struct {
	Activity       string
	Email          string
	RemoveEnabled  bool
	DisabledReason string // set when RemoveEnabled is false
}

// ActivityCard is the presentation-ready form of an Activity.
type ActivityCard struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []ParticipantRow
}

// ActivityList is everything a full activity render replaces: the cards and
// the options offered by the signup form's activity selector.
type ActivityList struct {
	Cards   []ActivityCard
	Options []string
}

// SessionStatus is the admin indicator and the label of the single
// login/logout action.
type SessionStatus struct {
	AdminMode   bool
	Label       string
	ActionLabel string
}
