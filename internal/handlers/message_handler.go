package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/utils"
)

// MessageHandler serves direct messages and the caller's notification inbox
type MessageHandler struct {
	BaseHandler
	messageService      services.MessageService
	notificationService services.NotificationService
}

func NewMessageHandler(
	messageService services.MessageService,
	notificationService services.NotificationService,
	logger utils.Logger,
) *MessageHandler {
	return &MessageHandler{
		BaseHandler:         NewBaseHandler(logger),
		messageService:      messageService,
		notificationService: notificationService,
	}
}

// GetHistory returns the conversation between the caller and another user
// @Router /api/messages/history/{userId} [get]
func (h *MessageHandler) GetHistory(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}
	otherID := h.parseIDParam(c, "userId")
	if otherID == 0 {
		return
	}

	messages, err := h.messageService.History(c.Request.Context(), userID, otherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// @Router /api/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	senderID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req services.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), &req, senderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// @Router /api/messages/{id}/read [put]
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	message, err := h.messageService.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// @Router /api/messages/unread-count [get]
func (h *MessageHandler) UnreadMessageCount(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ===== NOTIFICATIONS =====

// @Router /api/notifications [get]
func (h *MessageHandler) ListNotifications(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var query services.NotificationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid query parameters", err.Error())
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID, &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// @Router /api/notifications/unread-count [get]
func (h *MessageHandler) UnreadNotificationCount(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// @Router /api/notifications/{id}/read [put]
func (h *MessageHandler) MarkNotificationRead(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// @Router /api/notifications/mark-all-read [put]
func (h *MessageHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, _, ok := h.identity(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Notifications marked read", "updated", updated)
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
