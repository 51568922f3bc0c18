package models

import "time"

type Announcement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedBy *uint     `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}
