package repositories

import (
	"context"

	"github.com/hostelhub/hostel-service/internal/models"
	"gorm.io/gorm"
)

// MessageRepository interface for direct messages
type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	// GetHistory returns messages in both directions between a and b, oldest first
	GetHistory(ctx context.Context, tx *gorm.DB, a, b uint, filters MessageFilters) ([]*models.Message, error)
	// MarkRead returns the updated message, or gorm.ErrRecordNotFound when the
	// message does not exist or was not sent to receiverID.
	MarkRead(ctx context.Context, tx *gorm.DB, id, receiverID uint) (*models.Message, error)
	CountUnread(ctx context.Context, tx *gorm.DB, receiverID uint) (int64, error)
}

// NotificationRepository interface for per-user notifications
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters NotificationFilters) ([]*models.Notification, error) // Newest first
	CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, announcement *models.Announcement) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error) // Newest first
}

type LostFoundRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LostFoundItem, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status models.LostFoundStatus) ([]*models.LostFoundItem, error) // Newest first
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.LostFoundStatus) error
}
