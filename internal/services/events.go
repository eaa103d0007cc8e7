package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"socialize/internal/models"

	"github.com/google/uuid"
)

// UserEventsExchange is the exchange user lifecycle events are published on.
const UserEventsExchange = "user"

// Routing keys for user lifecycle events.
const (
	EventUserRegistered      = "user.registered"
	EventUserLoggedIn        = "user.logged_in"
	EventUserUpdated         = "user.updated"
	EventUserPasswordChanged = "user.password_changed"
	EventUserPresence        = "user.presence"
	EventUserDeleted         = "user.deleted"
)

// EventPublisher publishes a message body under exchange and routing key.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// UserEvent is the payload of every user lifecycle event. It never carries credentials.
type UserEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Fields     []string  `json:"fields,omitempty"`
	Active     *bool     `json:"active,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newUserEvent(eventType string, u *models.User, at time.Time) UserEvent {
	return UserEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		UserID:     u.ID,
		Username:   u.Username,
		OccurredAt: at.UTC(),
	}
}

// publishEvent is best effort: failures are logged and never fail the operation.
func publishEvent(p EventPublisher, log *slog.Logger, event UserEvent) {
	if p == nil {
		log.Debug("event publisher is not configured, skipping event", "type", event.Type)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal user event", "type", event.Type, "error", err)
		return
	}
	if err := p.Publish(UserEventsExchange, event.Type, body); err != nil {
		log.Warn("failed to publish user event", "type", event.Type, "user_id", event.UserID, "error", err)
		return
	}
	log.Debug("published user event", "type", event.Type, "user_id", event.UserID)
}
