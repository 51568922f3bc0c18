package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
	"gorm.io/gorm"
)

type commentService struct {
	repo      repositories.Repository
	notifier  *notifier
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCommentService(repo repositories.Repository, publisher events.EventPublisher, recorder Recorder, logger *slog.Logger, validator *validator.Validator) CommentService {
	return &commentService{
		repo:      repo,
		notifier:  newNotifier(publisher, recorder, logger),
		logger:    logger,
		validator: validator,
	}
}

func (s *commentService) List(ctx context.Context, issueID uint) ([]*models.Comment, error) {
	exists, err := s.repo.Issue().Exists(ctx, nil, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to check issue: %w", err)
	}
	if !exists {
		return nil, ErrIssueNotFound
	}

	comments, err := s.repo.Comment().ListByIssue(ctx, nil, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// Add appends a comment. The reporter is notified unless they wrote it.
func (s *commentService) Add(ctx context.Context, issueID uint, req *CreateCommentRequest, authorID uint) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		comment      *models.Comment
		notification *models.Notification
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		issue, err := s.repo.Issue().GetByID(ctx, tx, issueID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrIssueNotFound
			}
			return fmt.Errorf("failed to get issue: %w", err)
		}

		author, err := s.repo.User().GetByID(ctx, tx, authorID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get author: %w", err)
		}

		comment = &models.Comment{
			IssueID: issueID,
			UserID:  authorID,
			Content: req.Content,
		}
		if err := s.repo.Comment().Create(ctx, tx, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		comment.Author = author
		comment.FillComputedFields()

		if issue.UserID == authorID {
			return nil
		}

		refType := models.ReferenceIssue
		notification = &models.Notification{
			UserID:        issue.UserID,
			Type:          models.NotificationComment,
			Title:         fmt.Sprintf("New comment from %s", author.Name),
			Content:       truncatePreview(comment.Content),
			ReferenceID:   &issue.ID,
			ReferenceType: &refType,
			Data: map[string]interface{}{
				"issue_id":   issue.ID,
				"comment_id": comment.ID,
				"author_id":  authorID,
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

	if notification != nil {
		s.notifier.notification(ctx, notification)
	}
	return comment, nil
}
