package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hostelhub/hostel-service/internal/auth"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
	"gorm.io/gorm"
)

// TokenIssuer signs session tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(userID uint, role models.UserRole) (string, error)
}

const loginSuccessMessage = "Login Successful"

type authService struct {
	repo      repositories.Repository
	tokens    TokenIssuer
	logger    *slog.Logger
	audit     *ServiceLogger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens TokenIssuer, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		logger:    logger,
		audit:     NewServiceLogger(logger, "auth"),
		validator: validator,
	}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := req.Email
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.audit.LogLoginFailure(ctx, email, "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.audit.LogLoginFailure(ctx, email, "password mismatch")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit.LogLoginFailure(ctx, email, "account deactivated")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResponse{
		Message: loginSuccessMessage,
		Token:   token,
		User:    user.Summary(),
	}, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if errs := s.validator.Business().ValidateRegistration(role, req.HostelName, req.BlockName, req.RoomNumber); len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	switch role {
	case models.RoleStudent:
		user.HostelName = req.HostelName
		user.BlockName = req.BlockName
		user.RoomNumber = req.RoomNumber
	case models.RoleStaff:
		user.StaffSpecialty = req.StaffSpecialty
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.User().ExistsByEmail(ctx, tx, user.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return ErrEmailTaken
		}

		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAuditEvent(ctx, AuditEvent{
		Action:       AuditUserCreated,
		ResourceID:   user.ID,
		ResourceType: "user",
		NewValue:     map[string]interface{}{"role": user.Role, "email": user.Email},
	})

	return user, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		return false, nil
	}

	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	start := time.Now()
	admin := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		// Another instance won the race
		if repositories.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.audit.LogOperation(ctx, "bootstrap_admin", admin.ID, admin.ID, "user", time.Since(start), nil)
	return true, nil
}

// normalizeEmail trims surrounding blanks. Case is significant.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
