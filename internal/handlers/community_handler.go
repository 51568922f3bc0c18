package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/utils"
)

// CommunityHandler serves issue comments, announcements and the lost and
// found board
type CommunityHandler struct {
	BaseHandler
	commentService      services.CommentService
	announcementService services.AnnouncementService
	lostFoundService    services.LostFoundService
}

func NewCommunityHandler(
	commentService services.CommentService,
	announcementService services.AnnouncementService,
	lostFoundService services.LostFoundService,
	logger utils.Logger,
) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler:         NewBaseHandler(logger),
		commentService:      commentService,
		announcementService: announcementService,
		lostFoundService:    lostFoundService,
	}
}

// ===== COMMENTS =====

// @Router /api/comments/{issue_id} [get]
func (h *CommunityHandler) ListComments(c *gin.Context) {
	issueID := h.parseIDParam(c, "issue_id")
	if issueID == 0 {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), issueID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// @Router /api/comments/{issue_id} [post]
func (h *CommunityHandler) AddComment(c *gin.Context) {
	authorID, _, ok := h.identity(c)
	if !ok {
		return
	}
	issueID := h.parseIDParam(c, "issue_id")
	if issueID == 0 {
		return
	}
	var req services.CreateCommentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Add(c.Request.Context(), issueID, &req, authorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added",
		"comment": comment,
	})
}

// ===== ANNOUNCEMENTS =====

// @Router /api/announcements [post]
func (h *CommunityHandler) CreateAnnouncement(c *gin.Context) {
	authorID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req services.CreateAnnouncementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), &req, authorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Announcement created",
		"announcement": announcement,
	})
}

// @Router /api/announcements [get]
func (h *CommunityHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.announcementService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// ===== LOST AND FOUND =====

// @Router /api/lost-found [get]
func (h *CommunityHandler) ListLostFound(c *gin.Context) {
	items, err := h.lostFoundService.ListOpen(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Router /api/lost-found [post]
func (h *CommunityHandler) ReportLostFound(c *gin.Context) {
	reporterID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req services.CreateLostFoundRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.lostFoundService.Create(c.Request.Context(), &req, reporterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item reported successfully",
		"item":    item,
	})
}

// ClaimLostFound closes an item. Only its reporter or an admin may do so.
// @Router /api/lost-found/{id}/claim [put]
func (h *CommunityHandler) ClaimLostFound(c *gin.Context) {
	userID, role, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	item, err := h.lostFoundService.Claim(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item marked as claimed",
		"item":    item,
	})
}
