package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
	"gorm.io/gorm"
)

const previewLength = 50

type messageService struct {
	repo      repositories.Repository
	notifier  *notifier
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMessageService(repo repositories.Repository, publisher events.EventPublisher, recorder Recorder, logger *slog.Logger, validator *validator.Validator) MessageService {
	return &messageService{
		repo:      repo,
		notifier:  newNotifier(publisher, recorder, logger),
		logger:    logger,
		validator: validator,
	}
}

func (s *messageService) History(ctx context.Context, userID, otherID uint) ([]*models.Message, error) {
	messages, err := s.repo.Message().GetHistory(ctx, nil, userID, otherID, repositories.MessageFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	return messages, nil
}

// Send stores the message and the receiver's notification together, then
// pushes both to the receiver's room.
func (s *messageService) Send(ctx context.Context, req *SendMessageRequest, senderID uint) (*models.Message, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		message      *models.Message
		notification *models.Notification
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		receiver, err := s.repo.User().GetByID(ctx, tx, req.ReceiverID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrReceiverNotFound
			}
			return fmt.Errorf("failed to get receiver: %w", err)
		}

		message = &models.Message{
			SenderID:   senderID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
		}
		if err := s.repo.Message().Create(ctx, tx, message); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		sender, err := s.repo.User().GetByID(ctx, tx, senderID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get sender: %w", err)
		}
		message.Sender = sender
		message.Receiver = receiver
		message.FillComputedFields()

		refType := models.ReferenceMessage
		notification = &models.Notification{
			UserID:        req.ReceiverID,
			Type:          models.NotificationMessage,
			Title:         messageNotificationTitle(sender),
			Content:       truncatePreview(message.Content),
			ReferenceID:   &message.ID,
			ReferenceType: &refType,
			Data: map[string]interface{}{
				"sender_id":  senderID,
				"message_id": message.ID,
			},
		}
		if err := s.repo.Notification().Create(ctx, tx, notification); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Message sent", "sender_id", senderID, "receiver_id", req.ReceiverID, "message_id", message.ID)

	s.notifier.newMessage(ctx, message)
	s.notifier.notification(ctx, notification)
	return message, nil
}

func (s *messageService) MarkRead(ctx context.Context, id uint, userID uint) (*models.Message, error) {
	message, err := s.repo.Message().MarkRead(ctx, nil, id, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}
	return message, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.Message().CountUnread(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func messageNotificationTitle(sender *models.User) string {
	if sender.Role == models.RoleAdmin {
		return "New message from Admin"
	}
	return fmt.Sprintf("New message from %s", sender.Name)
}

// truncatePreview cuts content to previewLength runes plus an ellipsis
func truncatePreview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "..."
}
