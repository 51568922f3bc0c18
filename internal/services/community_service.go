package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
)

// ===== ANNOUNCEMENTS =====

type announcementService struct {
	repo      repositories.Repository
	audit     *ServiceLogger
	validator *validator.Validator
}

func NewAnnouncementService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AnnouncementService {
	return &announcementService{
		repo:      repo,
		audit:     NewServiceLogger(logger, "announcements"),
		validator: validator,
	}
}

func (s *announcementService) Create(ctx context.Context, req *CreateAnnouncementRequest, authorID uint) (*models.Announcement, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		Title:     strings.TrimSpace(req.Title),
		Message:   req.Message,
		CreatedBy: &authorID,
	}
	if err := s.repo.Announcement().Create(ctx, nil, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.audit.LogAuditEvent(ctx, AuditEvent{
		Action:       AuditAnnouncementMade,
		ActorID:      authorID,
		ResourceID:   announcement.ID,
		ResourceType: "announcement",
	})
	return announcement, nil
}

func (s *announcementService) List(ctx context.Context) ([]*models.Announcement, error) {
	announcements, err := s.repo.Announcement().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	if announcements == nil {
		announcements = []*models.Announcement{}
	}
	return announcements, nil
}

// ===== LOST AND FOUND =====

type lostFoundService struct {
	repo      repositories.Repository
	audit     *ServiceLogger
	validator *validator.Validator
}

func NewLostFoundService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) LostFoundService {
	return &lostFoundService{
		repo:      repo,
		audit:     NewServiceLogger(logger, "lost_found"),
		validator: validator,
	}
}

func (s *lostFoundService) Create(ctx context.Context, req *CreateLostFoundRequest, reporterID uint) (*models.LostFoundItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item := &models.LostFoundItem{
		UserID:      reporterID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Status:      models.LostFoundOpen,
		ContactInfo: req.ContactInfo,
	}
	if err := s.repo.LostFound().Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to create lost and found item: %w", err)
	}
	return item, nil
}

func (s *lostFoundService) ListOpen(ctx context.Context) ([]*models.LostFoundItem, error) {
	items, err := s.repo.LostFound().ListByStatus(ctx, nil, models.LostFoundOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to list lost and found items: %w", err)
	}
	if items == nil {
		items = []*models.LostFoundItem{}
	}
	return items, nil
}

// Claim closes an item. Only the reporter or an admin may claim it; claiming
// an already claimed item returns it unchanged.
func (s *lostFoundService) Claim(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.LostFoundItem, error) {
	start := time.Now()

	item, err := s.repo.LostFound().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get lost and found item: %w", err)
	}

	if item.UserID != userID && role != models.RoleAdmin {
		err = ErrForbidden
		s.audit.LogOperation(ctx, "claim_item", userID, id, "lost_found_item", time.Since(start), err)
		return nil, err
	}
	if item.Status == models.LostFoundClaimed {
		return item, nil
	}

	err = s.repo.LostFound().UpdateStatus(ctx, nil, id, models.LostFoundClaimed)
	if err != nil && repositories.IsNotFoundError(err) {
		err = ErrItemNotFound
	} else if err != nil {
		err = fmt.Errorf("failed to claim lost and found item: %w", err)
	}
	s.audit.LogOperation(ctx, "claim_item", userID, id, "lost_found_item", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	item.Status = models.LostFoundClaimed
	return item, nil
}
