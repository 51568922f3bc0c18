package models

import "time"

type LostFoundCategory string

const (
	LostFoundLost  LostFoundCategory = "Lost"
	LostFoundFound LostFoundCategory = "Found"
)

func (c LostFoundCategory) IsValid() bool {
	return c == LostFoundLost || c == LostFoundFound
}

type LostFoundStatus string

const (
	LostFoundOpen    LostFoundStatus = "Open"
	LostFoundClaimed LostFoundStatus = "Claimed"
)

type LostFoundItem struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	Title       string            `json:"title" gorm:"not null;size:255"`
	Description string            `json:"description" gorm:"type:text;not null"`
	Category    LostFoundCategory `json:"category" gorm:"not null;size:10"`
	Status      LostFoundStatus   `json:"status" gorm:"not null;size:10;default:Open;index"`
	ContactInfo *string           `json:"contact_info" gorm:"size:255"`
	CreatedAt   time.Time         `json:"created_at"`

	Reporter *User `json:"-" gorm:"foreignKey:UserID"`

	ReportedBy string `json:"reported_by" gorm:"-"`
}

func (LostFoundItem) TableName() string {
	return "lost_and_found_items"
}

func (l *LostFoundItem) FillComputedFields() {
	if l.Reporter != nil {
		l.ReportedBy = l.Reporter.Name
	}
}
