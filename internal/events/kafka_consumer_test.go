package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bookwise/service-booking/pkg/events"
	"github.com/bookwise/service-booking/pkg/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRemover struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeRemover) DeleteUserBookings(_ context.Context, userID uuid.UUID) (int64, error) {
	f.calls = append(f.calls, userID)
	return 2, f.err
}

func newTestConsumer(svc UserBookingRemover) *UserEventConsumer {
	return &UserEventConsumer{service: svc, logger: zap.NewNop()}
}

func message(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-user", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestHandleMessage_UserDeleted(t *testing.T) {
	svc := &fakeRemover{}
	c := newTestConsumer(svc)
	userID := uuid.New()

	err := c.handleMessage(context.Background(), message(t, events.UserDeleted, events.UserDeletedEvent{UserID: userID}))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, svc.calls)
}

func TestHandleMessage_RetriesOnServiceError(t *testing.T) {
	svc := &fakeRemover{err: errors.New("db down")}
	c := newTestConsumer(svc)

	err := c.handleMessage(context.Background(), message(t, events.UserDeleted, events.UserDeletedEvent{UserID: uuid.New()}))
	assert.Error(t, err)
}

func TestHandleMessage_IgnoresOtherAndMalformed(t *testing.T) {
	svc := &fakeRemover{}
	c := newTestConsumer(svc)

	assert.NoError(t, c.handleMessage(context.Background(), message(t, "user.created", map[string]string{"user_id": uuid.NewString()})))
	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("{broken")}))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, events.UserDeleted, map[string]string{"user_id": "nope"})))
	assert.Empty(t, svc.calls)
}
