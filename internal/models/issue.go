package models

import (
	"strings"
	"time"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
)

func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved:
		return true
	}
	return false
}

type IssuePriority string

const (
	PriorityLow    IssuePriority = "Low"
	PriorityMedium IssuePriority = "Medium"
	PriorityHigh   IssuePriority = "High"
)

// ParseIssuePriority canonicalizes a client supplied priority. Empty input
// yields Medium.
func ParseIssuePriority(value string) (IssuePriority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

const (
	DefaultIssueCategory = "general"
	DefaultAdminNote     = "Resolved by admin"
)

type Issue struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UserID      uint          `json:"user_id" gorm:"not null;index"`
	Title       string        `json:"title" gorm:"not null;size:200"`
	Category    string        `json:"category" gorm:"not null;size:50;default:general;index"`
	Priority    IssuePriority `json:"priority" gorm:"not null;size:10;default:Medium"`
	Description string        `json:"description" gorm:"type:text"`
	IsPublic    bool          `json:"is_public" gorm:"default:false;index"`
	Status      IssueStatus   `json:"status" gorm:"not null;size:20;default:open;index"`

	ImageURL       *string `json:"image_url" gorm:"size:500"`
	AdminNote      *string `json:"admin_note" gorm:"type:text"`
	AssignedUserID *uint   `json:"assigned_user_id" gorm:"index"`

	// Copied from the reporter at creation time
	HostelName *string `json:"hostel_name" gorm:"size:100;index"`
	BlockName  *string `json:"block_name" gorm:"size:50"`
	RoomNumber *string `json:"room_number" gorm:"size:20"`

	// Optimistic lock for status transitions
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Reporter     *User `json:"-" gorm:"foreignKey:UserID"`
	AssignedUser *User `json:"-" gorm:"foreignKey:AssignedUserID"`

	// Computed fields (not stored)
	StudentName       string  `json:"student_name" gorm:"-"`
	AssignedStaffName *string `json:"assigned_staff_name" gorm:"-"`
}

func (Issue) TableName() string {
	return "issues"
}

// FillComputedFields copies names from preloaded relations.
func (i *Issue) FillComputedFields() {
	if i.Reporter != nil {
		i.StudentName = i.Reporter.Name
	}
	if i.AssignedUser != nil {
		name := i.AssignedUser.Name
		i.AssignedStaffName = &name
	}
}
