package postgres

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"gorm.io/gorm"
)

type CommentPostgreSQL struct {
	helpers *SharedHelpers
}

func NewCommentPostgreSQL(helpers *SharedHelpers) repositories.CommentRepository {
	return &CommentPostgreSQL{helpers: helpers}
}

func (c *CommentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	db := c.helpers.getDB(tx)
	if err := db.WithContext(ctx).Omit("Author", "Issue").Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (c *CommentPostgreSQL) ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.Comment, error) {
	db := c.helpers.getDB(tx)
	var comments []*models.Comment
	err := db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Preload("Author", preloadUserName).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	for _, comment := range comments {
		comment.FillComputedFields()
	}
	return comments, nil
}
