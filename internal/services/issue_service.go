package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
	"gorm.io/gorm"
)

type issueService struct {
	repo      repositories.Repository
	notifier  *notifier
	recorder  Recorder
	logger    *slog.Logger
	audit     *ServiceLogger
	validator *validator.Validator
}

func NewIssueService(repo repositories.Repository, publisher events.EventPublisher, recorder Recorder, logger *slog.Logger, validator *validator.Validator) IssueService {
	n := newNotifier(publisher, recorder, logger)
	return &issueService{
		repo:      repo,
		notifier:  n,
		recorder:  n.recorder,
		logger:    logger,
		audit:     NewServiceLogger(logger, "issues"),
		validator: validator,
	}
}

// ===== CREATE / READ =====

func (s *issueService) Create(ctx context.Context, req *CreateIssueRequest, reporterID uint, imagePath *string) (*models.Issue, error) {
	start := time.Now()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	priority, ok := models.ParseIssuePriority(req.Priority)
	if !ok {
		return nil, singleValidation("priority", "must be one of Low, Medium, High", req.Priority)
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultIssueCategory
	}

	reporter, err := s.repo.User().GetByID(ctx, nil, reporterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get reporter: %w", err)
	}

	// Residence is copied so later moves do not rewrite history
	issue := &models.Issue{
		UserID:      reporterID,
		Title:       strings.TrimSpace(req.Title),
		Category:    category,
		Priority:    priority,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Status:      models.IssueOpen,
		ImageURL:    imagePath,
		HostelName:  reporter.HostelName,
		BlockName:   reporter.BlockName,
		RoomNumber:  reporter.RoomNumber,
	}

	err = s.repo.Issue().Create(ctx, nil, issue)
	s.audit.LogOperation(ctx, "create_issue", reporterID, issue.ID, "issue", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	issue.StudentName = reporter.Name
	s.recorder.IssueCreated()
	return issue, nil
}

func (s *issueService) Get(ctx context.Context, id uint, viewerID uint, viewerRole models.UserRole) (*models.Issue, error) {
	issue, err := s.getIssue(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	// Students see their own issues and the public board
	if viewerRole == models.RoleStudent && issue.UserID != viewerID && !issue.IsPublic {
		return nil, ErrForbidden
	}
	return issue, nil
}

func (s *issueService) ListAll(ctx context.Context, query *IssueListQuery) ([]*models.Issue, int64, error) {
	return s.list(ctx, query, repositories.IssueFilters{})
}

func (s *issueService) ListPublic(ctx context.Context, query *IssueListQuery) ([]*models.Issue, int64, error) {
	public := true
	return s.list(ctx, query, repositories.IssueFilters{IsPublic: &public})
}

func (s *issueService) ListMine(ctx context.Context, reporterID uint, query *IssueListQuery) ([]*models.Issue, int64, error) {
	return s.list(ctx, query, repositories.IssueFilters{UserID: &reporterID})
}

func (s *issueService) Stats(ctx context.Context) (*models.IssueStats, error) {
	stats, err := s.repo.Issue().GetStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get issue stats: %w", err)
	}
	return stats, nil
}

func (s *issueService) list(ctx context.Context, query *IssueListQuery, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	filters, err := buildIssueFilters(s.validator, query, filters)
	if err != nil {
		return nil, 0, err
	}

	issues, total, err := s.repo.Issue().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}
	if issues == nil {
		issues = []*models.Issue{}
	}
	return issues, total, nil
}

// buildIssueFilters validates the query string and merges it into base
func buildIssueFilters(v *validator.Validator, query *IssueListQuery, base repositories.IssueFilters) (repositories.IssueFilters, error) {
	if query == nil {
		return base, nil
	}
	if err := v.Validate(query); err != nil {
		return base, err
	}
	if errs := v.Business().ValidatePagination(query.Limit, query.Offset); len(errs) > 0 {
		return base, errs
	}

	if query.Status != "" {
		status := models.IssueStatus(query.Status)
		base.Status = &status
	}
	if hostel := strings.TrimSpace(query.Hostel); hostel != "" {
		base.Hostel = &hostel
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		base.Category = &category
	}
	base.Limit = query.Limit
	base.Offset = query.Offset
	return base, nil
}

// ===== TRANSITIONS =====

func (s *issueService) Open(ctx context.Context, id uint, req *OpenIssueRequest, actorID uint) (*models.Issue, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assignee, err := s.repo.User().GetByID(ctx, nil, req.AssignedUserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}
	if !assignee.Role.CanBeAssigned() || !assignee.IsActive {
		return nil, singleValidation("assigned_user_id", "must be an active staff or admin user", req.AssignedUserID)
	}

	return s.transition(ctx, "open_issue", id, models.IssueInProgress, actorID, func(issue *models.Issue) {
		issue.AssignedUserID = &assignee.ID
		issue.AssignedUser = assignee
		issue.FillComputedFields()
	})
}

func (s *issueService) Resolve(ctx context.Context, id uint, req *ResolveIssueRequest, actorID uint) (*models.Issue, error) {
	if req == nil {
		req = &ResolveIssueRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	note := models.DefaultAdminNote
	if req.AdminNote != nil && strings.TrimSpace(*req.AdminNote) != "" {
		note = strings.TrimSpace(*req.AdminNote)
	}

	return s.transition(ctx, "resolve_issue", id, models.IssueResolved, actorID, func(issue *models.Issue) {
		issue.AdminNote = &note
	})
}

// UpdateStatus is the generic setter. It obeys the same edges as Open and
// Resolve but never changes the assignee.
func (s *issueService) UpdateStatus(ctx context.Context, id uint, req *UpdateIssueStatusRequest, actorID uint) (*models.Issue, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	return s.transition(ctx, "update_issue_status", id, req.Status, actorID, func(issue *models.Issue) {
		if req.Status == models.IssueResolved && issue.AdminNote == nil {
			note := models.DefaultAdminNote
			issue.AdminNote = &note
		}
	})
}

// transition moves issue id to status to inside one transaction. The write is
// conditional on the version that was read; losing that race is a conflict.
func (s *issueService) transition(ctx context.Context, operation string, id uint, to models.IssueStatus, actorID uint, apply func(*models.Issue)) (*models.Issue, error) {
	start := time.Now()

	var (
		issue         *models.Issue
		previous      models.IssueStatus
		changed       bool
		notifications []*models.Notification
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.getIssue(ctx, tx, id)
		if err != nil {
			return err
		}
		previous = current.Status

		if err := ValidateTransition(previous, to); err != nil {
			return err
		}

		// Changes go to a copy so a no-op returns the stored row untouched
		next := *current
		next.Status = to
		apply(&next)
		if isNoopTransition(previous, to, current.AssignedUserID, next.AssignedUserID) {
			issue = current
			return nil
		}

		if err := s.repo.Issue().UpdateStatus(ctx, tx, &next, current.Version); err != nil {
			if errors.Is(err, repositories.ErrStaleVersion) {
				return s.staleIssueError(ctx, tx, id)
			}
			return fmt.Errorf("failed to update issue: %w", err)
		}

		notifications = transitionNotifications(&next, previous, current.AssignedUserID)
		for _, n := range notifications {
			if err := s.repo.Notification().Create(ctx, tx, n); err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}

		issue = &next
		changed = true
		return nil
	})

	s.audit.LogOperation(ctx, operation, actorID, id, "issue", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if changed {
		s.recorder.IssueTransition(previous, to)
		s.audit.LogAuditEvent(ctx, AuditEvent{
			Action:       AuditIssueTransition,
			ActorID:      actorID,
			ResourceID:   id,
			ResourceType: "issue",
			OldValue:     previous,
			NewValue:     to,
		})

		for _, n := range notifications {
			s.notifier.notification(ctx, n)
		}
		s.notifier.issueUpdated(ctx, issue, previous)
	}

	return issue, nil
}

// staleIssueError tells a deleted issue apart from a concurrent edit
func (s *issueService) staleIssueError(ctx context.Context, tx *gorm.DB, id uint) error {
	exists, err := s.repo.Issue().Exists(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to re-read issue: %w", err)
	}
	if !exists {
		return ErrIssueNotFound
	}
	return ErrIssueConflict
}

func (s *issueService) getIssue(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	issue, err := s.repo.Issue().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

// transitionNotifications builds the rows written alongside a status change
func transitionNotifications(issue *models.Issue, previous models.IssueStatus, previousAssignee *uint) []*models.Notification {
	var out []*models.Notification
	data := map[string]interface{}{
		"issue_id":        issue.ID,
		"status":          string(issue.Status),
		"previous_status": string(previous),
	}

	switch issue.Status {
	case models.IssueInProgress:
		out = append(out, issueNotification(issue.UserID, issue.ID, models.NotificationIssueInProgress,
			"Issue in progress",
			fmt.Sprintf("Your issue %q is now being worked on", issue.Title),
			data))

		if issue.AssignedUserID != nil && (previousAssignee == nil || *previousAssignee != *issue.AssignedUserID) {
			out = append(out, issueNotification(*issue.AssignedUserID, issue.ID, models.NotificationIssueAssigned,
				"New issue assigned",
				fmt.Sprintf("You have been assigned %q", issue.Title),
				data))
		}
	case models.IssueResolved:
		content := fmt.Sprintf("Your issue %q has been resolved", issue.Title)
		if issue.AdminNote != nil {
			content = fmt.Sprintf("%s: %s", content, *issue.AdminNote)
		}
		out = append(out, issueNotification(issue.UserID, issue.ID, models.NotificationIssueResolved,
			"Issue resolved", content, data))
	}
	return out
}

func issueNotification(userID, issueID uint, kind models.NotificationType, title, content string, data map[string]interface{}) *models.Notification {
	refType := models.ReferenceIssue
	refID := issueID
	return &models.Notification{
		UserID:        userID,
		Type:          kind,
		Title:         title,
		Content:       content,
		ReferenceID:   &refID,
		ReferenceType: &refType,
		Data:          data,
	}
}
