package driven

import (
	"context"
	"errors"
)

// ErrPromptCancelled is returned by a PasswordPrompter when the user dismisses
// the dialog without entering a value.
var ErrPromptCancelled = errors.New("prompt cancelled")

// PasswordPrompter defines the driven port for the admin password dialog.
// PromptPassword suspends only the calling action until the user answers.
type PasswordPrompter interface {
	PromptPassword(ctx context.Context, label string) (string, error)
}
