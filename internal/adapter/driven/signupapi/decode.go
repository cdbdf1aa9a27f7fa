package signupapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
)

// activityRecord is the wire shape of one entry of GET /activities.
type activityRecord struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// errorResponse is the body of a non-2xx response. Detail is usually a
// string but validation failures send a list of objects.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// detailText returns Detail when it is a JSON string, otherwise "".
func (e errorResponse) detailText() string {
	var s string
	if err := json.Unmarshal(e.Detail, &s); err != nil {
		return ""
	}
	return s
}

// decodeActivities decodes the name -> record object of GET /activities,
// keeping the order in which the service listed the activities.
func decodeActivities(body []byte) ([]model.Activity, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode activities: expected object, got %v", tok)
	}

	activities := []model.Activity{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode activity name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode activity name: unexpected token %v", tok)
		}

		var rec activityRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode activity %q: %w", name, err)
		}
		activities = append(activities, rec.toModel(name))
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

func (r activityRecord) toModel(name string) model.Activity {
	participants := r.Participants
	if participants == nil {
		participants = []string{}
	}
	return model.Activity{
		Name:            name,
		Description:     r.Description,
		Schedule:        r.Schedule,
		MaxParticipants: r.MaxParticipants,
		Participants:    participants,
	}
}
