package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hostelhub/hostel-service/internal/events"
)

// Relay consumes the realtime topic and hands each event to the local hub.
// With a Kafka broker every instance runs its own relay so a user's sockets
// are reached wherever they are connected.
type Relay struct {
	subscriber message.Subscriber
	topic      string
	hub        *Hub
	logger     *slog.Logger
}

func NewRelay(subscriber message.Subscriber, topic string, hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{
		subscriber: subscriber,
		topic:      topic,
		hub:        hub,
		logger:     logger,
	}
}

// Start subscribes and returns once the subscription is established. Events
// are consumed until ctx is cancelled or the subscriber is closed.
func (r *Relay) Start(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.topic, err)
	}

	r.logger.Info("Realtime relay started", "topic", r.topic)
	go r.consume(messages)
	return nil
}

func (r *Relay) consume(messages <-chan *message.Message) {
	for msg := range messages {
		r.handle(msg)
	}
	r.logger.Info("Realtime relay stopped", "topic", r.topic)
}

// handle always acks. Delivery is at most once; a malformed or undeliverable
// event is not worth redelivering.
func (r *Relay) handle(msg *message.Message) {
	defer msg.Ack()

	event, err := events.DecodeMessage(msg)
	if err != nil {
		r.logger.Error("Discarding malformed realtime event", "message_id", msg.UUID, "error", err)
		return
	}

	delivered := r.hub.Deliver(event)
	r.logger.Debug("Relayed realtime event",
		"event_id", event.ID,
		"event_type", event.Type,
		"room", event.Room,
		"sockets", delivered)
}
