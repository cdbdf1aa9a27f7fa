package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
)

// ErrTransport marks failures where no usable response was obtained: network
// errors, unreadable bodies and bodies that do not parse as the expected JSON.
// Adapters wrap it with %w so callers can match it with errors.Is.
var ErrTransport = errors.New("transport failure")

// RejectionError is returned when the service answers with a well-formed
// non-2xx response. Detail carries the server's "detail" field and may be empty.
type RejectionError struct {
	Status int
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("rejected with status %d", e.Status)
	}
	return fmt.Sprintf("rejected with status %d: %s", e.Status, e.Detail)
}

// LoginResult is the body of a successful admin login.
type LoginResult struct {
	Token   string
	Message string
}

// ActivityAPI defines the driven port for the activity-signup HTTP service.
// Privileged calls take the admin token explicitly; the adapter attaches it
// as the X-Admin-Token header and never stores it.
type ActivityAPI interface {
	// ListActivities returns the full activity collection in server order.
	ListActivities(ctx context.Context) ([]model.Activity, error)

	// Signup registers email for the named activity and returns the server message.
	Signup(ctx context.Context, activity, email string) (string, error)

	// Unregister removes email from the named activity. Requires an admin token.
	Unregister(ctx context.Context, adminToken, activity, email string) (string, error)

	// Login exchanges the admin password for a session token.
	Login(ctx context.Context, password string) (LoginResult, error)

	// Logout tells the service to invalidate adminToken. The response body is ignored.
	Logout(ctx context.Context, adminToken string) error
}
