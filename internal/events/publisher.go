package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	metadataEventType = "event_type"
	metadataRoom      = "room"
)

// EventPublisher defines the interface for publishing realtime events
type EventPublisher interface {
	Publish(ctx context.Context, event *RealtimeEvent) error
	Close() error
}

// WatermillEventPublisher publishes events on any watermill publisher
// (in-process gochannel or Kafka)
type WatermillEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	Publisher message.Publisher
	TopicName string
	Logger    *slog.Logger
}

func NewWatermillEventPublisher(config PublisherConfig) *WatermillEventPublisher {
	return &WatermillEventPublisher{
		publisher: config.Publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}
}

// Publish publishes a realtime event to the topic
func (p *WatermillEventPublisher) Publish(ctx context.Context, event *RealtimeEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.SetContext(ctx)

	// Add metadata headers
	msg.Metadata.Set(metadataEventType, string(event.Type))
	msg.Metadata.Set(metadataRoom, event.Room)
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish realtime event",
			"event_id", event.ID,
			"event_type", event.Type,
			"room", event.Room,
			"error", err)
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}

	p.logger.Debug("Published realtime event",
		"event_id", event.ID,
		"event_type", event.Type,
		"room", event.Room,
		"topic", p.topicName)

	return nil
}

// Close closes the underlying publisher
func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// DecodeMessage turns a broker message back into an event.
func DecodeMessage(msg *message.Message) (*RealtimeEvent, error) {
	var event RealtimeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal realtime event %s: %w", msg.UUID, err)
	}
	if event.Room == "" {
		event.Room = msg.Metadata.Get(metadataRoom)
	}
	return &event, nil
}

// MockEventPublisher is a mock implementation for testing
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []RealtimeEvent
	Err    error
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]RealtimeEvent, 0),
		Logger: logger,
	}
}

// Publish stores the event in memory, or fails with Err when set
func (m *MockEventPublisher) Publish(ctx context.Context, event *RealtimeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, *event)
	m.Logger.Debug("Mock: Published realtime event",
		"event_id", event.ID,
		"event_type", event.Type,
		"room", event.Room)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all published events
func (m *MockEventPublisher) GetPublishedEvents() []RealtimeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RealtimeEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// ClearEvents clears all published events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = make([]RealtimeEvent, 0)
}
