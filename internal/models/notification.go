package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType is an open set; the constants are the ones this service emits.
type NotificationType string

const (
	NotificationMessage         NotificationType = "message"
	NotificationComment         NotificationType = "comment"
	NotificationIssueAssigned   NotificationType = "issue_assigned"
	NotificationIssueInProgress NotificationType = "issue_in_progress"
	NotificationIssueResolved   NotificationType = "issue_resolved"
)

const (
	ReferenceMessage = "message"
	ReferenceIssue   = "issue"
)

type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	UserID  uint             `json:"user_id" gorm:"not null;index"`
	Type    NotificationType `json:"type" gorm:"not null;size:50;index"`
	Title   string           `json:"title" gorm:"not null;size:255"`
	Content string           `json:"content" gorm:"type:text"`

	// Originating entity
	ReferenceID   *uint   `json:"reference_id"`
	ReferenceType *string `json:"reference_type" gorm:"size:50"`

	// Extra payload for clients, e.g. sender id or new status
	Data datatypes.JSONMap `json:"data,omitempty" gorm:"type:jsonb"`

	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`

	Recipient *User `json:"-" gorm:"foreignKey:UserID"`
}

func (Notification) TableName() string {
	return "notifications"
}
