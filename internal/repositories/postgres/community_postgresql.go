package postgres

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessagePostgreSQL struct {
	helpers *SharedHelpers
}

func NewMessagePostgreSQL(helpers *SharedHelpers) repositories.MessageRepository {
	return &MessagePostgreSQL{helpers: helpers}
}

func (m *MessagePostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	db := m.helpers.getDB(tx)
	if err := db.WithContext(ctx).Omit("Sender", "Receiver").Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (m *MessagePostgreSQL) GetHistory(ctx context.Context, tx *gorm.DB, a, b uint, filters repositories.MessageFilters) ([]*models.Message, error) {
	db := m.helpers.getDB(tx)
	query := db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Preload("Sender", preloadUserName).
		Preload("Receiver", preloadUserName).
		Order("created_at ASC").
		Order("id ASC")

	var messages []*models.Message
	if err := m.helpers.ApplyPagination(query, filters.Limit, filters.Offset).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}

	for _, message := range messages {
		message.FillComputedFields()
	}
	return messages, nil
}

func (m *MessagePostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id, receiverID uint) (*models.Message, error) {
	db := m.helpers.getDB(tx)
	var message models.Message
	result := db.WithContext(ctx).
		Model(&message).
		Clauses(clause.Returning{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("is_read", true)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &message, nil
}

func (m *MessagePostgreSQL) CountUnread(ctx context.Context, tx *gorm.DB, receiverID uint) (int64, error) {
	db := m.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

type NotificationPostgreSQL struct {
	helpers *SharedHelpers
}

func NewNotificationPostgreSQL(helpers *SharedHelpers) repositories.NotificationRepository {
	return &NotificationPostgreSQL{helpers: helpers}
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	db := n.helpers.getDB(tx)
	if err := db.WithContext(ctx).Omit("Recipient").Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	db := n.helpers.getDB(tx)
	query := db.WithContext(ctx).Where("user_id = ?", userID)
	if filters.IsRead != nil {
		query = query.Where("is_read = ?", *filters.IsRead)
	}
	query = query.Order("created_at DESC").Order("id DESC")

	var notifications []*models.Notification
	if err := n.helpers.ApplyPagination(query, filters.Limit, filters.Offset).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (n *NotificationPostgreSQL) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := n.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (n *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) (*models.Notification, error) {
	db := n.helpers.getDB(tx)
	var notification models.Notification
	result := db.WithContext(ctx).
		Model(&notification).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &notification, nil
}

func (n *NotificationPostgreSQL) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := n.helpers.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

type AnnouncementPostgreSQL struct {
	helpers *SharedHelpers
}

func NewAnnouncementPostgreSQL(helpers *SharedHelpers) repositories.AnnouncementRepository {
	return &AnnouncementPostgreSQL{helpers: helpers}
}

func (a *AnnouncementPostgreSQL) Create(ctx context.Context, tx *gorm.DB, announcement *models.Announcement) error {
	db := a.helpers.getDB(tx)
	if err := db.WithContext(ctx).Create(announcement).Error; err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (a *AnnouncementPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error) {
	db := a.helpers.getDB(tx)
	var announcements []*models.Announcement
	if err := db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&announcements).Error; err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

type LostFoundPostgreSQL struct {
	helpers *SharedHelpers
}

func NewLostFoundPostgreSQL(helpers *SharedHelpers) repositories.LostFoundRepository {
	return &LostFoundPostgreSQL{helpers: helpers}
}

func (l *LostFoundPostgreSQL) Create(ctx context.Context, tx *gorm.DB, item *models.LostFoundItem) error {
	db := l.helpers.getDB(tx)
	if err := db.WithContext(ctx).Omit("Reporter").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create lost and found item: %w", err)
	}
	return nil
}

func (l *LostFoundPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LostFoundItem, error) {
	db := l.helpers.getDB(tx)
	var item models.LostFoundItem
	if err := db.WithContext(ctx).Preload("Reporter", preloadUserName).First(&item, id).Error; err != nil {
		return nil, err
	}
	item.FillComputedFields()
	return &item, nil
}

func (l *LostFoundPostgreSQL) ListByStatus(ctx context.Context, tx *gorm.DB, status models.LostFoundStatus) ([]*models.LostFoundItem, error) {
	db := l.helpers.getDB(tx)
	var items []*models.LostFoundItem
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Preload("Reporter", preloadUserName).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lost and found items: %w", err)
	}

	for _, item := range items {
		item.FillComputedFields()
	}
	return items, nil
}

func (l *LostFoundPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.LostFoundStatus) error {
	db := l.helpers.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.LostFoundItem{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update lost and found item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
