package models

import "time"

// Message is a direct message between two users. History between two users
// is the union of both directions ordered by creation time.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index:idx_messages_pair,priority:1"`
	ReceiverID uint      `json:"receiver_id" gorm:"not null;index:idx_messages_pair,priority:2;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`

	Sender   *User `json:"-" gorm:"foreignKey:SenderID"`
	Receiver *User `json:"-" gorm:"foreignKey:ReceiverID"`

	SenderName   string `json:"sender_name,omitempty" gorm:"-"`
	ReceiverName string `json:"receiver_name,omitempty" gorm:"-"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) FillComputedFields() {
	if m.Sender != nil {
		m.SenderName = m.Sender.Name
	}
	if m.Receiver != nil {
		m.ReceiverName = m.Receiver.Name
	}
}
