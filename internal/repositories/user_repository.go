package repositories

import (
	"context"

	"github.com/hostelhub/hostel-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for account operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	// Role-based queries, ordered by name
	ListByRoles(ctx context.Context, tx *gorm.DB, roles []models.UserRole, activeOnly bool) ([]*models.User, error)

	// Soft delete; rows are never removed
	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error
}
