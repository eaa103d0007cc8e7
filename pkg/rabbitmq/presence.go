package rabbitmq

import (
	"encoding/json"
	"fmt"
)

// PresenceMessage reports whether a user currently has a live session.
type PresenceMessage struct {
	UserID uint `json:"user_id"`
	Active bool `json:"active"`
}

// ParsePresenceMessage decodes a presence message body such as
// {"user_id":1,"active":true}. Both fields are required.
func ParsePresenceMessage(body []byte) (PresenceMessage, error) {
	var raw struct {
		UserID *uint `json:"user_id"`
		Active *bool `json:"active"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PresenceMessage{}, fmt.Errorf("failed to decode presence message: %w", err)
	}
	if raw.UserID == nil || *raw.UserID == 0 {
		return PresenceMessage{}, fmt.Errorf("user_id is required")
	}
	if raw.Active == nil {
		return PresenceMessage{}, fmt.Errorf("active is required")
	}
	return PresenceMessage{UserID: *raw.UserID, Active: *raw.Active}, nil
}
