package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoomForUser(t *testing.T) {
	assert.Equal(t, "user_42", RoomForUser(42))
}

func TestNewRealtimeEvent(t *testing.T) {
	payload := IssueUpdatedPayload{IssueID: 3, Status: models.IssueResolved, PreviousStatus: models.IssueOpen}

	event, err := NewRealtimeEvent(EventIssueUpdated, 7, payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventIssueUpdated, event.Type)
	assert.Equal(t, "user_7", event.Room)
	assert.Equal(t, EventSource, event.Source)

	var decoded IssueUpdatedPayload
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, uint(3), decoded.IssueID)
	assert.Equal(t, models.IssueResolved, decoded.Status)
}

func TestNewRealtimeEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewRealtimeEvent(EventNotification, 1, make(chan int))
	assert.Error(t, err)
}

func TestWatermillEventPublisher_GoChannelRoundTrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "hostel.realtime")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(PublisherConfig{
		Publisher: pubSub,
		TopicName: "hostel.realtime",
		Logger:    discardLogger(),
	})

	event, err := NewRealtimeEvent(EventNewMessage, 9, map[string]interface{}{"receiver_id": 9, "content": "hi"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, string(EventNewMessage), msg.Metadata.Get(metadataEventType))
		assert.Equal(t, "user_9", msg.Metadata.Get(metadataRoom))

		decoded, err := DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, event.Room, decoded.Room)
		assert.JSONEq(t, string(event.Data), string(decoded.Data))
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	ctx := context.Background()

	event, err := NewRealtimeEvent(EventNotification, 1, map[string]string{"title": "x"})
	require.NoError(t, err)
	require.NoError(t, mock.Publish(ctx, event))
	assert.Len(t, mock.GetPublishedEvents(), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())

	mock.Err = errors.New("broker down")
	assert.Error(t, mock.Publish(ctx, event))
	assert.Empty(t, mock.GetPublishedEvents())
}
