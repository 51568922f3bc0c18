package models

import "time"

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	IssueID   uint      `json:"issue_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Author *User  `json:"-" gorm:"foreignKey:UserID"`
	Issue  *Issue `json:"-" gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`

	AuthorName string   `json:"author_name" gorm:"-"`
	AuthorRole UserRole `json:"author_role" gorm:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) FillComputedFields() {
	if c.Author != nil {
		c.AuthorName = c.Author.Name
		c.AuthorRole = c.Author.Role
	}
}
