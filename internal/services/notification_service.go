package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
)

const defaultNotificationLimit = 20

type notificationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) NotificationService {
	return &notificationService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *notificationService) List(ctx context.Context, userID uint, query *NotificationQuery) ([]*models.Notification, error) {
	filters := repositories.NotificationFilters{Limit: defaultNotificationLimit}
	if query != nil {
		if errs := s.validator.Business().ValidatePagination(query.Limit, query.Offset); len(errs) > 0 {
			return nil, errs
		}
		if query.Limit > 0 {
			filters.Limit = query.Limit
		}
		filters.Offset = query.Offset
		if query.UnreadOnly {
			unread := false
			filters.IsRead = &unread
		}
	}

	notifications, err := s.repo.Notification().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.Notification().CountUnread(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead only touches notifications owned by userID
func (s *notificationService) MarkRead(ctx context.Context, id uint, userID uint) (*models.Notification, error) {
	notification, err := s.repo.Notification().MarkRead(ctx, nil, id, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.repo.Notification().MarkAllRead(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.logger.Debug("Marked notifications read", "user_id", userID, "count", updated)
	return updated, nil
}
