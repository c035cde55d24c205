package events

import (
	"context"

	"github.com/bookwise/service-booking/pkg/events"
	"github.com/bookwise/service-booking/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// UserBookingRemover is satisfied by *application.BookingService.
type UserBookingRemover interface {
	DeleteUserBookings(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserEventConsumer listens to user events and removes the bookings of deleted users.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	service  UserBookingRemover
	logger   *zap.Logger
}

// NewUserEventConsumer creates a new UserEventConsumer.
func NewUserEventConsumer(
	brokers []string,
	groupID string,
	service UserBookingRemover,
	logger *zap.Logger,
) *UserEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicUserEvents, logger)
	return &UserEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming user events. This blocks until the context is cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.UserDeleted:
		return c.handleUserDeleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *UserEventConsumer) handleUserDeleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.UserDeletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.UserID == uuid.Nil {
		c.logger.Error("failed to parse UserDeletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	removed, err := c.service.DeleteUserBookings(ctx, evt.UserID)
	if err != nil {
		c.logger.Error("failed to remove bookings of deleted user",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("bookings removed after user deletion",
		zap.String("user_id", evt.UserID.String()),
		zap.Int64("count", removed),
	)
	return nil
}
