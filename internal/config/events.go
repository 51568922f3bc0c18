package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/hostelhub/hostel-service/internal/events"
)

const (
	BrokerGoChannel = "gochannel"
	BrokerKafka     = "kafka"
)

// EventConfig holds configuration for the realtime event broker
type EventConfig struct {
	Broker        string // gochannel or kafka
	KafkaBrokers  string
	RealtimeTopic string
	ConsumerGroup string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

// Broker bundles the pub/sub pair the realtime path runs on. With gochannel
// both sides are the same in-process instance.
type Broker struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	shared     bool
}

func (b *Broker) Close() error {
	pubErr := b.Publisher.Close()
	if b.shared {
		return pubErr
	}
	subErr := b.Subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}

// CreateBroker creates the pub/sub pair based on configuration
func (c *EventConfig) CreateBroker(logger *slog.Logger) (*Broker, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch strings.ToLower(c.Broker) {
	case BrokerKafka:
		group := c.ConsumerGroup
		if group == "" {
			// Every instance needs every event to reach its own sockets.
			group = instanceConsumerGroup()
		}

		logger.Info("Creating Kafka realtime broker",
			"brokers", c.KafkaBrokers,
			"topic", c.RealtimeTopic,
			"consumer_group", group)

		publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   c.GetKafkaBrokers(),
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
		}

		subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
			Brokers:       c.GetKafkaBrokers(),
			Unmarshaler:   kafka.DefaultMarshaler{},
			ConsumerGroup: group,
		}, wmLogger)
		if err != nil {
			publisher.Close()
			return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
		}

		return &Broker{Publisher: publisher, Subscriber: subscriber}, nil
	case BrokerGoChannel, "":
		logger.Info("Using in-process realtime broker", "topic", c.RealtimeTopic)
	default:
		logger.Warn("Unknown events broker, falling back to gochannel", "broker", c.Broker)
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, wmLogger)
	return &Broker{Publisher: pubSub, Subscriber: pubSub, shared: true}, nil
}

// CreateEventPublisher creates the realtime event publisher on top of the broker
func (c *EventConfig) CreateEventPublisher(broker *Broker, logger *slog.Logger) events.EventPublisher {
	return events.NewWatermillEventPublisher(events.PublisherConfig{
		Publisher: broker.Publisher,
		TopicName: c.RealtimeTopic,
		Logger:    logger,
	})
}

func instanceConsumerGroup() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return fmt.Sprintf("hostel-realtime-%s-%s", host, uuid.NewString()[:8])
}
