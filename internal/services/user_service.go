package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"gorm.io/gorm"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
	audit  *ServiceLogger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
		audit:  NewServiceLogger(logger, "users"),
	}
}

func (s *userService) ListStudents(ctx context.Context) ([]*models.User, error) {
	students, err := s.repo.User().ListByRoles(ctx, nil, []models.UserRole{models.RoleStudent}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *userService) GetStudentDetails(ctx context.Context, id uint) (*StudentDetails, error) {
	student, err := s.getStudent(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	issues, err := collectIssues(ctx, s.repo.Issue(), repositories.IssueFilters{UserID: &student.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list student issues: %w", err)
	}
	if issues == nil {
		issues = []*models.Issue{}
	}

	return &StudentDetails{User: student, Issues: issues}, nil
}

func (s *userService) DeactivateStudent(ctx context.Context, id uint, actorID uint) (*models.User, error) {
	start := time.Now()
	var student *models.User

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		student, err = s.getStudent(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := s.repo.User().SetActive(ctx, tx, id, false); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to deactivate student: %w", err)
		}
		student.IsActive = false
		return nil
	})

	s.audit.LogOperation(ctx, "deactivate_student", actorID, id, "user", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.audit.LogAuditEvent(ctx, AuditEvent{
		Action:       AuditUserDeactivated,
		ActorID:      actorID,
		ResourceID:   id,
		ResourceType: "user",
		OldValue:     map[string]interface{}{"is_active": true},
		NewValue:     map[string]interface{}{"is_active": false},
	})
	return student, nil
}

func (s *userService) ListStaff(ctx context.Context) ([]StaffMember, error) {
	users, err := s.repo.User().ListByRoles(ctx, nil, []models.UserRole{models.RoleAdmin, models.RoleStaff}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	staff := make([]StaffMember, 0, len(users))
	for _, u := range users {
		staff = append(staff, StaffMember{
			ID:             u.ID,
			Name:           u.Name,
			Role:           u.Role,
			StaffSpecialty: u.StaffSpecialty,
		})
	}
	return staff, nil
}

// getStudent loads id and rejects users that are not students
func (s *userService) getStudent(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}
	return user, nil
}
