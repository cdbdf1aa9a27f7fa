package terminal_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/signupdesk/internal/adapter/driving/terminal"
	"github.com/ericfisherdev/signupdesk/internal/domain/model"
)

func sampleList(removeEnabled bool) model.ActivityList {
	reason := ""
	if !removeEnabled {
		reason = "Admin login required"
	}
	return model.ActivityList{
		Cards: []model.ActivityCard{
			{
				Name:        "Chess Club",
				Description: "d",
				Schedule:    "s",
				SpotsLeft:   4,
				Participants: []model.ParticipantRow{
					{Activity: "Chess Club", Email: "a@x.com", RemoveEnabled: removeEnabled, DisabledReason: reason},
				},
			},
			{
				Name:        "Art Studio",
				Description: "paint",
				Schedule:    "Mon",
				SpotsLeft:   -1,
			},
			{
				Name:        "Basketball",
				Description: "hoops",
				Schedule:    "Fri",
				SpotsLeft:   8,
				Participants: []model.ParticipantRow{
					{Activity: "Basketball", Email: "b@x.com", RemoveEnabled: removeEnabled, DisabledReason: reason},
					{Activity: "Basketball", Email: "c@x.com", RemoveEnabled: removeEnabled, DisabledReason: reason},
				},
			},
		},
		Options: []string{"Chess Club", "Art Studio", "Basketball"},
	}
}

func TestScreen_RenderActivities(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)

	screen.RenderActivities(sampleList(false))

	text := out.String()
	assert.Contains(t, text, "Chess Club\n  d\n  Schedule: s\n  Availability: 4 spots left\n")
	assert.Contains(t, text, "[1] a@x.com  (remove disabled: Admin login required)")
	assert.Contains(t, text, "Availability: -1 spots left")
	assert.Contains(t, text, "Art Studio\n  paint\n  Schedule: Mon\n  Availability: -1 spots left\n  No participants yet\n")
	assert.Contains(t, text, "[3] c@x.com")
	assert.NotContains(t, text, "\x1b[", "colour disabled")

	assert.Less(t, bytes.Index(out.Bytes(), []byte("Chess Club")), bytes.Index(out.Bytes(), []byte("Art Studio")))
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Art Studio")), bytes.Index(out.Bytes(), []byte("Basketball")))
}

func TestScreen_RowsAreNumberedAcrossCards(t *testing.T) {
	screen := terminal.NewScreen(&bytes.Buffer{}, false)
	screen.RenderActivities(sampleList(true))

	row, ok := screen.Row(2)
	require.True(t, ok)
	assert.Equal(t, "Basketball", row.Activity)
	assert.Equal(t, "b@x.com", row.Email)
	assert.True(t, row.RemoveEnabled)

	_, ok = screen.Row(0)
	assert.False(t, ok)
	_, ok = screen.Row(4)
	assert.False(t, ok)
}

func TestScreen_EnabledRowShowsRemoveControl(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)

	screen.RenderActivities(sampleList(true))

	assert.Contains(t, out.String(), "[1] a@x.com  (remove #1)")
	assert.NotContains(t, out.String(), "Admin login required")
}

func TestScreen_SanitizesServerText(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)

	screen.RenderActivities(model.ActivityList{
		Cards: []model.ActivityCard{{
			Name:        "<b>Chess</b> Club\x1b[2J",
			Description: "Art & Craft < 5",
			Schedule:    "s",
		}},
		Options: []string{"<b>Chess</b> Club\x1b[2J"},
	})
	screen.ShowMessage(model.Message{Text: "<i>Removed</i>", Severity: model.SeveritySuccess})

	text := out.String()
	assert.Contains(t, text, "Chess Club[2J")
	assert.NotContains(t, text, "<b>")
	assert.NotContains(t, text, "\x1b")
	assert.Contains(t, text, "Art & Craft < 5")
	assert.Contains(t, text, "Removed\n")
}

func TestScreen_LoadFailureDropsPreviousRows(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)
	screen.RenderActivities(sampleList(true))

	screen.RenderLoadFailure("Failed to load activities. Please try again later.")

	assert.Contains(t, out.String(), "Failed to load activities. Please try again later.\n")
	_, ok := screen.Row(1)
	assert.False(t, ok)

	out.Reset()
	screen.Redraw()
	assert.Equal(t, "No activities.\n", out.String())
}

func TestScreen_SignupForm(t *testing.T) {
	screen := terminal.NewScreen(&bytes.Buffer{}, false)

	assert.False(t, screen.SelectActivity("Chess Club"), "no options before the first render")

	screen.RenderActivities(sampleList(false))
	assert.Equal(t, terminal.Form{Activity: "Chess Club"}, screen.Form(), "first option is the default")
	assert.True(t, screen.SelectActivity("Basketball"))
	assert.False(t, screen.SelectActivity("Knitting"))
	screen.SetEmail("b@x.com")
	assert.Equal(t, terminal.Form{Activity: "Basketball", Email: "b@x.com"}, screen.Form())

	screen.RenderActivities(sampleList(false))
	assert.Equal(t, "Basketball", screen.Form().Activity, "selection survives a re-render")

	screen.ResetSignupForm()
	assert.Equal(t, terminal.Form{Activity: "Chess Club"}, screen.Form())
	assert.Equal(t, []string{"Chess Club", "Art Studio", "Basketball"}, screen.Options())
}

func TestScreen_SelectionFallsBackWhenActivityDisappears(t *testing.T) {
	screen := terminal.NewScreen(&bytes.Buffer{}, false)
	screen.RenderActivities(sampleList(false))
	require.True(t, screen.SelectActivity("Basketball"))

	list := sampleList(false)
	list.Cards = list.Cards[:2]
	list.Options = list.Options[:2]
	screen.RenderActivities(list)
	assert.Equal(t, "Chess Club", screen.Form().Activity)

	screen.RenderActivities(model.ActivityList{})
	screen.ResetSignupForm()
	assert.Equal(t, terminal.Form{}, screen.Form(), "no options, no default")
}

func TestScreen_OptionsAreReplacedOnEachRender(t *testing.T) {
	screen := terminal.NewScreen(&bytes.Buffer{}, false)

	screen.RenderActivities(sampleList(false))
	screen.RenderActivities(sampleList(false))

	assert.Len(t, screen.Options(), 3)
}

func TestScreen_StatusPrintedOnlyWhilePanelVisible(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)
	on := model.SessionStatus{AdminMode: true, Label: "Admin mode: On", ActionLabel: "Log Out"}

	screen.RenderSessionStatus(on)
	assert.Empty(t, out.String())

	assert.True(t, screen.TogglePanel())
	assert.Equal(t, "Admin mode: On  [admin: Log Out]\n", out.String())

	out.Reset()
	screen.RenderSessionStatus(model.SessionStatus{Label: "Admin mode: Off", ActionLabel: "Log In"})
	assert.Equal(t, "Admin mode: Off  [admin: Log In]\n", out.String())

	assert.False(t, screen.TogglePanel())
	assert.False(t, screen.PanelVisible())
}

func TestScreen_MessageLifecycle(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, false)

	_, ok := screen.CurrentMessage()
	assert.False(t, ok)

	msg := model.Message{Text: "Admin mode enabled.", Severity: model.SeveritySuccess}
	screen.ShowMessage(msg)
	current, ok := screen.CurrentMessage()
	require.True(t, ok)
	assert.Equal(t, msg, current)
	assert.Equal(t, "Admin mode enabled.\n", out.String())

	screen.ClearMessage()
	_, ok = screen.CurrentMessage()
	assert.False(t, ok)
}

func TestScreen_ColoursBySeverity(t *testing.T) {
	var out bytes.Buffer
	screen := terminal.NewScreen(&out, true)

	screen.ShowMessage(model.Message{Text: "ok", Severity: model.SeveritySuccess})
	screen.ShowMessage(model.Message{Text: "bad", Severity: model.SeverityError})

	assert.Contains(t, out.String(), "\x1b[32mok")
	assert.Contains(t, out.String(), "\x1b[31mbad")
}
