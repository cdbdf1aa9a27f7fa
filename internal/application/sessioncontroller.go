package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// ErrLoginCancelled is returned by Login when the password dialog was
// dismissed or left empty.
var ErrLoginCancelled = errors.New("login cancelled")

const (
	passwordPromptLabel   = "Enter admin password:"
	loginRejectedFallback = "Invalid admin credentials."
	loginFailedMessage    = "Failed to enable admin mode."
	adminEnabledMessage   = "Admin mode enabled."
	adminDisabledMessage  = "Admin mode disabled."
	statusLabelOn         = "Admin mode: On"
	statusLabelOff        = "Admin mode: Off"
	actionLabelLogIn      = "Log In"
	actionLabelLogOut     = "Log Out"
)

// SessionController drives the login and logout transitions.
//
//	LoggedOut --Login success--> LoggedIn
//	LoggedIn  --Logout (always)--> LoggedOut
type SessionController struct {
	api      driven.ActivityAPI
	session  *SessionStore
	view     *ActivityView
	screen   driven.Screen
	messages *MessageBoard
	prompter driven.PasswordPrompter
	logger   *slog.Logger
}

// NewSessionController creates a SessionController with all required dependencies.
func NewSessionController(
	api driven.ActivityAPI,
	session *SessionStore,
	view *ActivityView,
	screen driven.Screen,
	messages *MessageBoard,
	prompter driven.PasswordPrompter,
	logger *slog.Logger,
) *SessionController {
	return &SessionController{
		api:      api,
		session:  session,
		view:     view,
		screen:   screen,
		messages: messages,
		prompter: prompter,
		logger:   logger,
	}
}

// StatusFor derives the admin indicator from credential presence alone.
func StatusFor(cred model.Credential) model.SessionStatus {
	if cred.Present() {
		return model.SessionStatus{AdminMode: true, Label: statusLabelOn, ActionLabel: actionLabelLogOut}
	}
	return model.SessionStatus{AdminMode: false, Label: statusLabelOff, ActionLabel: actionLabelLogIn}
}

// RenderStatus pushes the current session status to the screen and returns it.
func (c *SessionController) RenderStatus() model.SessionStatus {
	status := StatusFor(c.session.Get())
	c.screen.RenderSessionStatus(status)
	return status
}

// ToggleAdmin is the single login/logout action. The branch is chosen from
// the credential present when it is invoked, never when it was bound.
func (c *SessionController) ToggleAdmin(ctx context.Context) error {
	step, err := c.PrepareToggle(ctx)
	if err != nil {
		return err
	}
	return step(ctx)
}

// PrepareToggle runs the interactive half of ToggleAdmin on the calling
// goroutine and returns the half that talks to the service, so a front end
// can run it without blocking further input. With a credential present the
// step is Logout. Otherwise the password is prompted for now and the step
// exchanges it for a token; a cancelled prompt returns ErrLoginCancelled.
func (c *SessionController) PrepareToggle(ctx context.Context) (func(context.Context) error, error) {
	if c.session.Get().Present() {
		return c.Logout, nil
	}

	password, err := c.promptPassword(ctx)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error { return c.authenticate(ctx, password) }, nil
}

// Logout ends the admin session. Notifying the service is best effort; the
// local credential is cleared whatever the outcome.
func (c *SessionController) Logout(ctx context.Context) error {
	cred := c.session.Get()
	if !cred.Present() {
		return nil
	}

	if err := c.api.Logout(ctx, cred.Value); err != nil {
		c.logger.Error("error logging out", "error", err)
	}

	if err := c.session.Set(ctx, ""); err != nil {
		c.logger.Error("failed to clear stored admin token", "error", err)
	}

	c.RenderStatus()
	_ = c.view.Load(ctx)
	c.messages.Show(adminDisabledMessage, model.SeverityInfo)
	return nil
}

// Login asks for the admin password and exchanges it for a token. A cancelled
// or empty prompt returns ErrLoginCancelled without contacting the service.
func (c *SessionController) Login(ctx context.Context) error {
	password, err := c.promptPassword(ctx)
	if err != nil {
		return err
	}
	return c.authenticate(ctx, password)
}

func (c *SessionController) promptPassword(ctx context.Context) (string, error) {
	password, err := c.prompter.PromptPassword(ctx, passwordPromptLabel)
	if errors.Is(err, driven.ErrPromptCancelled) || (err == nil && password == "") {
		return "", ErrLoginCancelled
	}
	return password, err
}

func (c *SessionController) authenticate(ctx context.Context, password string) error {
	result, err := c.api.Login(ctx, password)
	if err == nil && result.Token == "" {
		err = &driven.RejectionError{Status: 200}
	}
	if err != nil {
		c.logger.Error("error logging in as admin", "error", err)
		c.messages.Show(rejectionText(err, loginRejectedFallback, loginFailedMessage), model.SeverityError)
		return err
	}

	if err := c.session.Set(ctx, result.Token); err != nil {
		c.logger.Error("failed to persist admin token", "error", err)
	}

	c.RenderStatus()
	_ = c.view.Load(ctx)
	c.messages.Show(adminEnabledMessage, model.SeveritySuccess)
	return nil
}
