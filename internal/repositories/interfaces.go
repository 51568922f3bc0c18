package repositories

import (
	"context"
	"errors"

	"github.com/hostelhub/hostel-service/internal/models"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned by conditional updates when the row's version
// no longer matches the one the caller read.
var ErrStaleVersion = errors.New("stale version")

// Repository aggregates every store and owns the transaction boundary.
// Methods that take a tx use it when non-nil and the shared pool otherwise.
type Repository interface {
	User() UserRepository
	Issue() IssueRepository
	Comment() CommentRepository
	Message() MessageRepository
	Notification() NotificationRepository
	Announcement() AnnouncementRepository
	LostFound() LostFoundRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ===== SHARED FILTER STRUCTS =====

type IssueFilters struct {
	Status         *models.IssueStatus `json:"status"`
	UserID         *uint               `json:"user_id"`
	AssignedUserID *uint               `json:"assigned_user_id"`
	IsPublic       *bool               `json:"is_public"`
	Hostel         *string             `json:"hostel"`
	Category       *string             `json:"category"`
	Limit          int                 `json:"limit"`
	Offset         int                 `json:"offset"`
}

type MessageFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type NotificationFilters struct {
	IsRead *bool `json:"is_read"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
