package driven

import "github.com/ericfisherdev/signupdesk/internal/domain/model"

// Screen defines the driven port for whatever surface displays the client.
// Implementations must be safe for concurrent use: completions of different
// in-flight actions may render at the same time.
type Screen interface {
	// RenderActivities replaces the whole activity list and the signup form's
	// activity options.
	RenderActivities(list model.ActivityList)

	// RenderLoadFailure replaces the activity list with a static failure notice.
	RenderLoadFailure(notice string)

	// ResetSignupForm clears the signup form inputs.
	ResetSignupForm()

	// RenderSessionStatus shows the admin indicator and action label.
	RenderSessionStatus(status model.SessionStatus)

	// ShowMessage displays the status message, replacing any current one.
	ShowMessage(msg model.Message)

	// ClearMessage hides the status message.
	ClearMessage()
}
