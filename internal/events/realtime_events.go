package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostel-service/internal/models"
)

// EventType is the event name clients listen for on the socket
type EventType string

const (
	EventNewMessage   EventType = "new_message"
	EventNotification EventType = "notification"
	EventIssueUpdated EventType = "issue_updated"
)

const (
	EventSource  = "hostel-service"
	EventVersion = "1.0"
)

// RealtimeEvent is the envelope carried over the broker. Room names the
// single per-user room the event is delivered to.
type RealtimeEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Room      string          `json:"room"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// RoomForUser returns the room every socket of a user joins.
func RoomForUser(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// NewRealtimeEvent addresses payload to the room of userID.
func NewRealtimeEvent(eventType EventType, userID uint, payload interface{}) (*RealtimeEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &RealtimeEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Room:      RoomForUser(userID),
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}, nil
}

// IssueUpdatedPayload is pushed to the reporter after a status transition
type IssueUpdatedPayload struct {
	IssueID        uint               `json:"issue_id"`
	Title          string             `json:"title"`
	PreviousStatus models.IssueStatus `json:"previous_status"`
	Status         models.IssueStatus `json:"status"`
	AssignedUserID *uint              `json:"assigned_user_id,omitempty"`
	AdminNote      *string            `json:"admin_note,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
