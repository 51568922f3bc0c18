package repositories

import (
	"context"

	"github.com/hostelhub/hostel-service/internal/models"
	"gorm.io/gorm"
)

// IssueRepository interface for issue-specific operations
type IssueRepository interface {
	Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) // Includes reporter and assignee names
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Newest first
	List(ctx context.Context, tx *gorm.DB, filters IssueFilters) ([]*models.Issue, int64, error)

	// UpdateStatus writes status, assignee, note and bumps the version only if
	// the stored version still equals expectedVersion. Returns ErrStaleVersion
	// when no row matched.
	UpdateStatus(ctx context.Context, tx *gorm.DB, issue *models.Issue, expectedVersion int) error

	GetStats(ctx context.Context, tx *gorm.DB) (*models.IssueStats, error)
}

// CommentRepository interface for issue comments
type CommentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error
	ListByIssue(ctx context.Context, tx *gorm.DB, issueID uint) ([]*models.Comment, error) // Oldest first
}
