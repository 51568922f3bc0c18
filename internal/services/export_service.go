package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/repositories"
	"github.com/hostelhub/hostel-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	issuesSheet     = "Issues"
	summarySheet    = "Summary"
	exportPageSize  = validator.MaxPageSize
)

var issueExportHeaders = []string{
	"ID", "Title", "Category", "Priority", "Status", "Public",
	"Student", "Hostel", "Block", "Room", "Assigned To", "Admin Note",
	"Created At", "Updated At",
}

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ExportIssues writes every issue matching the query filters. Paging
// parameters are ignored.
func (s *exportService) ExportIssues(ctx context.Context, query *IssueListQuery) (*ExportFile, error) {
	filters := repositories.IssueFilters{}
	if query != nil {
		q := *query
		q.Limit, q.Offset = 0, 0
		var err error
		if filters, err = buildIssueFilters(s.validator, &q, filters); err != nil {
			return nil, err
		}
	}

	issues, err := collectIssues(ctx, s.repo.Issue(), filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for export: %w", err)
	}

	content, err := buildIssueWorkbook(issues)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	s.logger.Info("Exported issues", "rows", len(issues))

	return &ExportFile{
		FileName:    fmt.Sprintf("issues-%s.xlsx", generatedAt.Format("20060102-150405")),
		ContentType: xlsxContentType,
		Content:     content,
		RowCount:    len(issues),
		GeneratedAt: generatedAt,
	}, nil
}

// collectIssues pages through every issue matching filters
func collectIssues(ctx context.Context, issues repositories.IssueRepository, filters repositories.IssueFilters) ([]*models.Issue, error) {
	var all []*models.Issue
	filters.Limit = exportPageSize
	filters.Offset = 0

	for {
		page, total, err := issues.List(ctx, nil, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < exportPageSize || int64(len(all)) >= total {
			return all, nil
		}
		filters.Offset += len(page)
	}
}

func buildIssueWorkbook(issues []*models.Issue) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", issuesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename Excel sheet: %w", err)
	}

	// Write headers
	for i, header := range issueExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(issuesSheet, cell, header)
	}

	byStatus := map[models.IssueStatus]int{}
	for rowIndex, issue := range issues {
		byStatus[issue.Status]++
		for colIndex, value := range issueRow(issue) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(issuesSheet, cell, value)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetCellValue(summarySheet, "A1", "Status")
	f.SetCellValue(summarySheet, "B1", "Count")
	for i, status := range []models.IssueStatus{models.IssueOpen, models.IssueInProgress, models.IssueResolved} {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), string(status))
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), byStatus[status])
	}
	f.SetCellValue(summarySheet, "A5", "total")
	f.SetCellValue(summarySheet, "B5", len(issues))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func issueRow(issue *models.Issue) []interface{} {
	return []interface{}{
		issue.ID,
		issue.Title,
		issue.Category,
		string(issue.Priority),
		string(issue.Status),
		issue.IsPublic,
		issue.StudentName,
		deref(issue.HostelName),
		deref(issue.BlockName),
		deref(issue.RoomNumber),
		deref(issue.AssignedStaffName),
		deref(issue.AdminNote),
		issue.CreatedAt.UTC().Format(time.RFC3339),
		issue.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
