package application

import (
	"context"

	"github.com/bookwise/service-booking/pkg/kafka"
	"go.uber.org/zap"
)

const eventSource = "service-booking"

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// publishEvent is best-effort: failures are logged and never fail the request.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	if producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, topic, cloudEvent.WithSubject(key)); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
