package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanBeAssigned reports whether users with this role can be assigned issues.
func (r UserRole) CanBeAssigned() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"not null;size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"column:password;not null"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:student;index"`

	// Residence (students only)
	HostelName *string `json:"hostel_name" gorm:"size:100"`
	BlockName  *string `json:"block_name" gorm:"size:50"`
	RoomNumber *string `json:"room_number" gorm:"size:20"`

	// Staff only
	StaffSpecialty *string `json:"staff_specialty" gorm:"size:100"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary is the public identity returned at login.
type UserSummary struct {
	ID   uint     `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Role: u.Role}
}
