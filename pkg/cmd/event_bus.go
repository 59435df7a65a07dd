// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/facilityops/flowdesk/pkg/channels/gochannel"
	"github.com/facilityops/flowdesk/pkg/channels/kafka"
	"github.com/facilityops/flowdesk/pkg/eventbus"
)

const (
	EventBusMemory = "memory"
	EventBusKafka  = "kafka"
)

// NewEventBus builds the event bus that carries workflow change events.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "", EventBusMemory:
		pub, sub := gochannel.CreateChannel(watermillLogger)

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case EventBusKafka:
		brokers := kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS"))

		pub, sub, err := kafka.CreateChannel(watermillLogger, "flowdesk", brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
