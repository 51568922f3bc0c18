package services

import (
	"context"
	"log/slog"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/metrics"
	"github.com/hostelhub/hostel-service/internal/models"
)

// Recorder receives domain counters. *metrics.Metrics satisfies it.
type Recorder interface {
	IssueCreated()
	IssueTransition(from, to models.IssueStatus)
	ObserveDelivery(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) IssueCreated()                               {}
func (nopRecorder) IssueTransition(from, to models.IssueStatus) {}
func (nopRecorder) ObserveDelivery(event, outcome string)       {}

// notifier pushes realtime events after the durable rows are committed.
// Publish failures are logged and counted, never returned.
type notifier struct {
	publisher events.EventPublisher
	recorder  Recorder
	logger    *slog.Logger
}

func newNotifier(publisher events.EventPublisher, recorder Recorder, logger *slog.Logger) *notifier {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &notifier{publisher: publisher, recorder: recorder, logger: logger}
}

func (n *notifier) emit(ctx context.Context, eventType events.EventType, userID uint, payload interface{}) {
	if n.publisher == nil {
		return
	}

	event, err := events.NewRealtimeEvent(eventType, userID, payload)
	if err == nil {
		err = n.publisher.Publish(ctx, event)
	}
	if err != nil {
		n.recorder.ObserveDelivery(string(eventType), metrics.OutcomePublishFailed)
		n.logger.Warn("Failed to publish realtime event",
			"event_type", eventType,
			"user_id", userID,
			"error", err)
	}
}

func (n *notifier) notification(ctx context.Context, notification *models.Notification) {
	n.emit(ctx, events.EventNotification, notification.UserID, notification)
}

func (n *notifier) issueUpdated(ctx context.Context, issue *models.Issue, previous models.IssueStatus) {
	n.emit(ctx, events.EventIssueUpdated, issue.UserID, events.IssueUpdatedPayload{
		IssueID:        issue.ID,
		Title:          issue.Title,
		PreviousStatus: previous,
		Status:         issue.Status,
		AssignedUserID: issue.AssignedUserID,
		AdminNote:      issue.AdminNote,
		UpdatedAt:      issue.UpdatedAt,
	})
}

func (n *notifier) newMessage(ctx context.Context, message *models.Message) {
	n.emit(ctx, events.EventNewMessage, message.ReceiverID, message)
}
