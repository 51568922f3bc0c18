package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/middleware"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/upload"
	"github.com/hostelhub/hostel-service/internal/utils"
)

// ImageStore persists issue attachments. *upload.Storage satisfies it.
type ImageStore interface {
	Save(header *multipart.FileHeader) (string, error)
	Remove(path string) error
	MaxBytes() int64
}

const (
	// multipart framing allowance on top of the file limit
	formOverheadBytes int64 = 1 << 20
	// rows matching the filters, ignoring limit and offset
	totalCountHeader = "X-Total-Count"
)

type IssueHandler struct {
	BaseHandler
	issueService  services.IssueService
	userService   services.UserService
	exportService services.ExportService
	images        ImageStore
}

func NewIssueHandler(
	issueService services.IssueService,
	userService services.UserService,
	exportService services.ExportService,
	images ImageStore,
	logger utils.Logger,
) *IssueHandler {
	return &IssueHandler{
		BaseHandler:   NewBaseHandler(logger),
		issueService:  issueService,
		userService:   userService,
		exportService: exportService,
		images:        images,
	}
}

// CreateIssue files a new issue with an optional image attachment
// @Router /api/issues [post]
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	reporterID, _, ok := h.identity(c)
	if !ok {
		return
	}

	if h.images != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.images.MaxBytes()+formOverheadBytes)
	}

	var req services.CreateIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "File too large", nil)
			return
		}
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request payload", err.Error())
		return
	}

	imagePath, err := h.saveImage(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), &req, reporterID, imagePath)
	if err != nil {
		if imagePath != nil {
			if removeErr := h.images.Remove(*imagePath); removeErr != nil {
				h.LogError(c, removeErr, "Failed to remove orphaned upload", "path", *imagePath)
			}
		}
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Issue created", "issue_id", issue.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue created successfully",
		"issue":   issue,
	})
}

// saveImage stores the optional attachment. A missing file is not an error.
func (h *IssueHandler) saveImage(c *gin.Context) (*string, error) {
	if h.images == nil || c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}

	header, err := c.FormFile(upload.FieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, services.ErrPayloadTooLarge
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	path, err := h.images.Save(header)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// ListIssues returns every issue, newest first
// @Router /api/issues [get]
func (h *IssueHandler) ListIssues(c *gin.Context) {
	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	issues, total, err := h.issueService.ListAll(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, issues)
}

// ListPublicIssues returns issues flagged public
// @Router /api/issues/public [get]
func (h *IssueHandler) ListPublicIssues(c *gin.Context) {
	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	issues, total, err := h.issueService.ListPublic(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, issues)
}

// ListMyIssues returns the caller's own issues
// @Router /api/issues/my [get]
func (h *IssueHandler) ListMyIssues(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}
	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	issues, total, err := h.issueService.ListMine(c.Request.Context(), userID, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, issues)
}

// ListStaff returns the users an issue can be assigned to
// @Router /api/issues/staff [get]
func (h *IssueHandler) ListStaff(c *gin.Context) {
	staff, err := h.userService.ListStaff(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// GetStats returns the dashboard breakdown
// @Router /api/issues/stats [get]
func (h *IssueHandler) GetStats(c *gin.Context) {
	stats, err := h.issueService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportIssues streams the filtered issue set as a spreadsheet
// @Router /api/issues/export [get]
func (h *IssueHandler) ExportIssues(c *gin.Context) {
	query, ok := h.bindListQuery(c)
	if !ok {
		return
	}

	file, err := h.exportService.ExportIssues(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Issues exported", "rows", file.RowCount)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Header("X-Row-Count", strconv.Itoa(file.RowCount))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// GetIssue returns one issue, subject to visibility rules
// @Router /api/issues/{id} [get]
func (h *IssueHandler) GetIssue(c *gin.Context) {
	userID, role, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	issue, err := h.issueService.Get(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus applies a generic status change
// @Router /api/issues/{id}/status [put]
func (h *IssueHandler) UpdateIssueStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.UpdateIssueStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	// Anonymous callers are allowed when status updates are public
	actorID, _ := middleware.GetUserID(c)

	issue, err := h.issueService.UpdateStatus(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue status updated successfully",
		"issue":   issue,
	})
}

// OpenIssue assigns the issue and moves it to in progress
// @Router /api/issues/{id}/open [put]
func (h *IssueHandler) OpenIssue(c *gin.Context) {
	actorID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.OpenIssueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	issue, err := h.issueService.Open(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue marked as in progress and assigned",
		"issue":   issue,
	})
}

// ResolveIssue closes the issue with an optional note
// @Router /api/issues/{id}/resolve [put]
func (h *IssueHandler) ResolveIssue(c *gin.Context) {
	actorID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// The body is optional
	var req services.ResolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request payload", err.Error())
		return
	}

	issue, err := h.issueService.Resolve(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue resolved successfully",
		"issue":   issue,
	})
}

func (h *IssueHandler) bindListQuery(c *gin.Context) (*services.IssueListQuery, bool) {
	var query services.IssueListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid query parameters", err.Error())
		return nil, false
	}
	return &query, true
}
