package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"gorm.io/gorm"
)

type IssuePostgreSQL struct {
	helpers *SharedHelpers
}

func NewIssuePostgreSQL(helpers *SharedHelpers) repositories.IssueRepository {
	return &IssuePostgreSQL{helpers: helpers}
}

// Create inserts a new issue at version 1
func (i *IssuePostgreSQL) Create(ctx context.Context, tx *gorm.DB, issue *models.Issue) error {
	db := i.helpers.getDB(tx)
	issue.Version = 1
	if err := db.WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

// GetByID retrieves an issue with reporter and assignee names
func (i *IssuePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Issue, error) {
	db := i.helpers.getDB(tx)
	var issue models.Issue
	err := db.WithContext(ctx).
		Preload("Reporter", preloadUserName).
		Preload("AssignedUser", preloadUserName).
		First(&issue, id).Error
	if err != nil {
		return nil, err
	}

	issue.FillComputedFields()
	return &issue, nil
}

func (i *IssuePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := i.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check issue: %w", err)
	}
	return count > 0, nil
}

// List retrieves issues with filters and pagination, newest first
func (i *IssuePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.IssueFilters) ([]*models.Issue, int64, error) {
	db := i.helpers.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Issue{})

	// Apply filters
	query = i.applyFilters(query, filters)

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	query = i.helpers.ApplyPagination(query.Order("created_at DESC").Order("id DESC"), filters.Limit, filters.Offset)

	var issues []*models.Issue
	err := query.
		Preload("Reporter", preloadUserName).
		Preload("AssignedUser", preloadUserName).
		Find(&issues).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	for _, issue := range issues {
		issue.FillComputedFields()
	}

	return issues, total, nil
}

func (i *IssuePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, issue *models.Issue, expectedVersion int) error {
	db := i.helpers.getDB(tx)
	now := time.Now()

	result := db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ? AND version = ?", issue.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           issue.Status,
			"assigned_user_id": issue.AssignedUserID,
			"admin_note":       issue.AdminNote,
			"version":          expectedVersion + 1,
			"updated_at":       now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update issue status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrStaleVersion
	}

	issue.Version = expectedVersion + 1
	issue.UpdatedAt = now
	return nil
}

type groupCount struct {
	Key   string
	Count int64
}

// GetStats aggregates issue counts for the admin dashboard
func (i *IssuePostgreSQL) GetStats(ctx context.Context, tx *gorm.DB) (*models.IssueStats, error) {
	db := i.helpers.getDB(tx).WithContext(ctx)
	stats := &models.IssueStats{
		ByStatus:   make(map[models.IssueStatus]int64),
		ByCategory: make(map[string]int64),
		ByPriority: make(map[models.IssuePriority]int64),
	}

	if err := db.Model(&models.Issue{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count issues: %w", err)
	}

	byStatus, err := i.countBy(db, "status")
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[models.IssueStatus(row.Key)] = row.Count
	}

	byCategory, err := i.countBy(db, "category")
	if err != nil {
		return nil, err
	}
	for _, row := range byCategory {
		stats.ByCategory[row.Key] = row.Count
	}

	byPriority, err := i.countBy(db, "priority")
	if err != nil {
		return nil, err
	}
	for _, row := range byPriority {
		stats.ByPriority[models.IssuePriority(row.Key)] = row.Count
	}

	if err := db.Model(&models.Issue{}).Where("is_public = ?", true).Count(&stats.Public).Error; err != nil {
		return nil, fmt.Errorf("failed to count public issues: %w", err)
	}

	err = db.Model(&models.Issue{}).
		Where("assigned_user_id IS NULL AND status <> ?", models.IssueResolved).
		Count(&stats.Unassigned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count unassigned issues: %w", err)
	}

	return stats, nil
}

// column is always one of the fixed names above, never user input.
func (i *IssuePostgreSQL) countBy(db *gorm.DB, column string) ([]groupCount, error) {
	var rows []groupCount
	err := db.Model(&models.Issue{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count issues by %s: %w", column, err)
	}
	return rows, nil
}

func (i *IssuePostgreSQL) applyFilters(query *gorm.DB, filters repositories.IssueFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.AssignedUserID != nil {
		query = query.Where("assigned_user_id = ?", *filters.AssignedUserID)
	}
	if filters.IsPublic != nil {
		query = query.Where("is_public = ?", *filters.IsPublic)
	}
	if filters.Hostel != nil {
		query = query.Where("hostel_name = ?", *filters.Hostel)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	return query
}
