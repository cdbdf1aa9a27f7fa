// Package terminal implements the interactive text front end: a Screen that
// prints the activity list and status messages, a password prompter, and the
// command shell that turns typed commands into application actions.
package terminal

import (
	"fmt"
	"html"
	"io"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/fatih/color"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Screen = (*Screen)(nil)
	_ io.Writer     = (*Screen)(nil)
)

// Form is the signup form's transient input state.
type Form struct {
	Activity string
	Email    string
}

// Screen prints everything the application renders and keeps the state the
// shell needs to address it: numbered participant rows, the activity options
// and the signup form. It is safe for concurrent use.
type Screen struct {
	mu        sync.Mutex
	out       io.Writer
	sanitizer *bluemonday.Policy

	success *color.Color
	failure *color.Color
	info    *color.Color
	heading *color.Color
	muted   *color.Color

	list         model.ActivityList
	rows         []model.ParticipantRow
	form         Form
	status       model.SessionStatus
	message      *model.Message
	panelVisible bool
}

// NewScreen creates a Screen writing to out. colored toggles ANSI colours.
func NewScreen(out io.Writer, colored bool) *Screen {
	s := &Screen{
		out:       out,
		sanitizer: bluemonday.StrictPolicy(),
		success:   color.New(color.FgGreen),
		failure:   color.New(color.FgRed),
		info:      color.New(color.FgCyan),
		heading:   color.New(color.Bold),
		muted:     color.New(color.Faint),
		status:    model.SessionStatus{Label: "Admin mode: Off", ActionLabel: "Log In"},
	}
	for _, c := range []*color.Color{s.success, s.failure, s.info, s.heading, s.muted} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// RenderActivities replaces the printed list and the activity options. Like a
// select element, the chosen activity survives if it is still offered and
// falls back to the first option otherwise.
func (s *Screen) RenderActivities(list model.ActivityList) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = list
	if !slices.Contains(list.Options, s.form.Activity) {
		s.form.Activity = s.defaultActivity()
	}
	s.rows = s.rows[:0]
	for _, card := range list.Cards {
		s.rows = append(s.rows, card.Participants...)
	}
	s.printList()
}

// RenderLoadFailure replaces the list with notice. Previously rendered rows
// can no longer be addressed.
func (s *Screen) RenderLoadFailure(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list.Cards = nil
	s.rows = nil
	fmt.Fprintln(s.out, s.failure.Sprint(notice))
}

// ResetSignupForm clears the email and puts the activity selector back on its
// default, the first option.
func (s *Screen) ResetSignupForm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.form = Form{Activity: s.defaultActivity()}
}

// RenderSessionStatus records the admin status; it is printed while the admin
// panel is visible.
func (s *Screen) RenderSessionStatus(status model.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
	if s.panelVisible {
		s.printStatus()
	}
}

// ShowMessage prints msg and makes it the current message.
func (s *Screen) ShowMessage(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = &msg
	fmt.Fprintln(s.out, s.colorFor(msg.Severity).Sprint(s.clean(msg.Text)))
}

// ClearMessage hides the current message.
func (s *Screen) ClearMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = nil
}

// Write prints p unchanged, serialized with every render.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

// CurrentMessage returns the message still on display, if any.
func (s *Screen) CurrentMessage() (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.message == nil {
		return model.Message{}, false
	}
	return *s.message, true
}

// Redraw prints the last rendered list again.
func (s *Screen) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printList()
}

// TogglePanel shows or hides the admin panel and reports whether it is now visible.
func (s *Screen) TogglePanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.panelVisible = !s.panelVisible
	if s.panelVisible {
		s.printStatus()
	}
	return s.panelVisible
}

// PanelVisible reports whether the admin panel is shown.
func (s *Screen) PanelVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelVisible
}

// PrintStatus prints the admin status whether or not the panel is visible.
func (s *Screen) PrintStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printStatus()
}

// Row returns participant row n (1-based) of the last render.
func (s *Screen) Row(n int) (model.ParticipantRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.rows) {
		return model.ParticipantRow{}, false
	}
	return s.rows[n-1], true
}

// SelectActivity sets the form's activity. Only rendered options can be selected.
func (s *Screen) SelectActivity(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.list.Options, name) {
		return false
	}
	s.form.Activity = name
	return true
}

// SetEmail sets the form's email input.
func (s *Screen) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Email = email
}

// Form returns the current form inputs.
func (s *Screen) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Options returns the activity names the form offers.
func (s *Screen) Options() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.list.Options)
}

func (s *Screen) defaultActivity() string {
	if len(s.list.Options) == 0 {
		return ""
	}
	return s.list.Options[0]
}

func (s *Screen) printList() {
	if len(s.list.Cards) == 0 {
		fmt.Fprintln(s.out, s.muted.Sprint("No activities."))
		return
	}

	n := 0
	var b strings.Builder
	for _, card := range s.list.Cards {
		b.WriteString(s.heading.Sprint(s.clean(card.Name)))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  %s\n", s.clean(card.Description))
		fmt.Fprintf(&b, "  Schedule: %s\n", s.clean(card.Schedule))
		fmt.Fprintf(&b, "  Availability: %d spots left\n", card.SpotsLeft)

		if len(card.Participants) == 0 {
			fmt.Fprintf(&b, "  %s\n", s.muted.Sprint("No participants yet"))
			continue
		}
		b.WriteString("  Participants:\n")
		for _, row := range card.Participants {
			n++
			control := fmt.Sprintf("remove #%d", n)
			if !row.RemoveEnabled {
				control = s.muted.Sprintf("remove disabled: %s", row.DisabledReason)
			}
			fmt.Fprintf(&b, "    [%d] %s  (%s)\n", n, s.clean(row.Email), control)
		}
	}
	io.WriteString(s.out, b.String())
}

func (s *Screen) printStatus() {
	fmt.Fprintf(s.out, "%s  [admin: %s]\n", s.info.Sprint(s.status.Label), s.status.ActionLabel)
}

func (s *Screen) colorFor(severity model.Severity) *color.Color {
	switch severity {
	case model.SeveritySuccess:
		return s.success
	case model.SeverityError:
		return s.failure
	default:
		return s.info
	}
}

// clean turns server-supplied text into printable plain text: markup is
// stripped and control characters (including terminal escapes) are dropped.
func (s *Screen) clean(text string) string {
	plain := html.UnescapeString(s.sanitizer.Sanitize(text))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, plain)
}
