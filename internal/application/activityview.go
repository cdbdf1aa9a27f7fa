// Package application contains the client's use-case components: the session
// store, the activity view and the session controller.
package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// ErrAdminRequired is returned by Unregister when no admin credential is
// stored. No request is sent in that case.
var ErrAdminRequired = errors.New("admin credential required")

// User-facing texts. Rejections show the server's detail instead when it has one.
const (
	loadFailureNotice     = "Failed to load activities. Please try again later."
	removeDisabledReason  = "Admin login required"
	adminRequiredMessage  = "Admin mode required to remove a participant."
	genericRejection      = "An error occurred"
	signupFailedMessage   = "Failed to sign up. Please try again."
	unregisterFailMessage = "Failed to unregister. Please try again."
)

// ActivityView renders the activity list and performs participant mutations.
// It never patches its rendering locally: every successful mutation is
// followed by a full Load.
type ActivityView struct {
	api      driven.ActivityAPI
	session  *SessionStore
	screen   driven.Screen
	messages *MessageBoard
	logger   *slog.Logger
}

// NewActivityView creates an ActivityView with all required dependencies.
func NewActivityView(
	api driven.ActivityAPI,
	session *SessionStore,
	screen driven.Screen,
	messages *MessageBoard,
	logger *slog.Logger,
) *ActivityView {
	return &ActivityView{
		api:      api,
		session:  session,
		screen:   screen,
		messages: messages,
		logger:   logger,
	}
}

// Load fetches the full activity collection and replaces the rendered list.
// On failure the list is replaced by a static notice; nothing from a previous
// render is kept.
func (v *ActivityView) Load(ctx context.Context) error {
	activities, err := v.api.ListActivities(ctx)
	if err != nil {
		v.logger.Error("failed to load activities", "error", err)
		v.screen.RenderLoadFailure(loadFailureNotice)
		return err
	}

	v.screen.RenderActivities(BuildActivityList(activities, v.session.Get()))
	return nil
}

// Signup registers email for activity. On success the form is reset and the
// list reloaded; on failure the form keeps its values.
func (v *ActivityView) Signup(ctx context.Context, activity, email string) error {
	message, err := v.api.Signup(ctx, activity, email)
	if err != nil {
		v.logger.Error("signup failed", "activity", activity, "error", err)
		v.messages.Show(failureText(err, signupFailedMessage), model.SeverityError)
		return err
	}

	v.messages.Show(message, model.SeveritySuccess)
	v.screen.ResetSignupForm()
	_ = v.Load(ctx)
	return nil
}

// Unregister removes email from activity using the stored admin credential.
// Without a credential it shows an error and sends nothing. A stale token is
// still sent; only the service can reject it.
func (v *ActivityView) Unregister(ctx context.Context, activity, email string) error {
	cred := v.session.Get()
	if !cred.Present() {
		v.messages.Show(adminRequiredMessage, model.SeverityError)
		return ErrAdminRequired
	}

	message, err := v.api.Unregister(ctx, cred.Value, activity, email)
	if err != nil {
		v.logger.Error("unregister failed", "activity", activity, "error", err)
		v.messages.Show(failureText(err, unregisterFailMessage), model.SeverityError)
		return err
	}

	v.messages.Show(message, model.SeveritySuccess)
	_ = v.Load(ctx)
	return nil
}

// BuildActivityList converts activities into their rendered form. Removal
// controls are enabled only when cred is present; this is a convenience for
// the user, the service still authorizes every removal.
func BuildActivityList(activities []model.Activity, cred model.Credential) model.ActivityList {
	list := model.ActivityList{
		Cards:   make([]model.ActivityCard, 0, len(activities)),
		Options: make([]string, 0, len(activities)),
	}

	for _, a := range activities {
		rows := make([]model.ParticipantRow, 0, len(a.Participants))
		for _, email := range a.Participants {
			row := model.ParticipantRow{
				Activity:      a.Name,
				Email:         email,
				RemoveEnabled: cred.Present(),
			}
			if !row.RemoveEnabled {
				row.DisabledReason = removeDisabledReason
			}
			rows = append(rows, row)
		}

		list.Cards = append(list.Cards, model.ActivityCard{
			Name:         a.Name,
			Description:  a.Description,
			Schedule:     a.Schedule,
			SpotsLeft:    a.SpotsLeft(),
			Participants: rows,
		})
		list.Options = append(list.Options, a.Name)
	}

	return list
}

// failureText picks the user-facing text for a failed request: the server's
// detail for a rejection (or a generic fallback when it has none), and
// transportText for everything else.
func failureText(err error, transportText string) string {
	return rejectionText(err, genericRejection, transportText)
}

func rejectionText(err error, fallback, transportText string) string {
	var rejection *driven.RejectionError
	if errors.As(err, &rejection) {
		if rejection.Detail != "" {
			return rejection.Detail
		}
		return fallback
	}
	return transportText
}
