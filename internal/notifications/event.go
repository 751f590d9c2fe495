package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a notification kind.
type EventType string

// Event types delivered on a user's channel.
const (
	EventReviewCreated EventType = "review.created"
	EventFollowCreated EventType = "follow.created"
)

// Event is the JSON payload published to a user's notification channel.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   uint      `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	TicketID  *uint     `json:"ticket_id,omitempty"`
	ReviewID  *uint     `json:"review_id,omitempty"`
	EdgeID    *uint     `json:"edge_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(eventType EventType, actorID uint, actorName string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		ActorName: actorName,
		CreatedAt: time.Now().UTC(),
	}
}

// Encode returns the event as a JSON string.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeEvent parses a payload produced by Encode.
func DecodeEvent(payload string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(payload), &e)
	return e, err
}
