package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/middleware"
	"github.com/hostelhub/hostel-service/internal/models"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/upload"
	"github.com/hostelhub/hostel-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse is the single error envelope every handler writes
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeValidationFailed  = "validation_failed"
	CodeInvalidTransition = "invalid_transition"
	CodePayloadTooLarge   = "payload_too_large"
	CodeInternal          = "internal"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides request scoped logging and error translation
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// log returns the request logger set by utils.ContextLogger
func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", h.extractUserID(c)}, additionalFields...)
	h.log(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.log(c).LogError(err, message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, ok := middleware.GetUserID(c); ok {
		return userID
	}
	return nil
}

// respondError writes the error envelope
func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message: message,
		Code:    code,
		Details: details,
	})
}

// handleServiceError is the one place service errors become HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Validation failed", validationErrors)
		return
	}

	var transitionErr *services.TransitionError
	if errors.As(err, &transitionErr) {
		respondError(c, http.StatusUnprocessableEntity, CodeInvalidTransition, transitionErr.Error(), transitionErr)
		return
	}

	switch {
	case services.IsUnauthorized(err):
		message := "Unauthorized"
		if errors.Is(err, services.ErrInvalidCredentials) {
			message = "Invalid Credentials"
		}
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
	case services.IsForbidden(err):
		respondError(c, http.StatusForbidden, CodeForbidden, "Access denied", nil)
	case services.IsNotFound(err):
		respondError(c, http.StatusNotFound, CodeNotFound, notFoundMessage(err), nil)
	case errors.Is(err, services.ErrEmailTaken):
		respondError(c, http.StatusConflict, CodeConflict, "User already exists", nil)
	case services.IsConflict(err):
		respondError(c, http.StatusConflict, CodeConflict, "Resource was modified concurrently, retry", nil)
	case services.IsValidation(err):
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Validation failed", nil)
	case errors.Is(err, services.ErrPayloadTooLarge), errors.Is(err, upload.ErrFileTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "File too large", nil)
	default:
		h.LogError(c, err, "Unhandled service error")
		respondError(c, http.StatusInternalServerError, CodeInternal, "Server Error", nil)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrIssueNotFound):
		return "Issue not found"
	case errors.Is(err, services.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, services.ErrReceiverNotFound):
		return "Receiver not found"
	case errors.Is(err, services.ErrMessageNotFound):
		return "Message not found"
	case errors.Is(err, services.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, services.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, services.ErrAssigneeNotFound):
		return "Assignee not found"
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	}
	return "Not found"
}

// bindJSON decodes the body and answers 400 on malformed input
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// parseIDParam reads a positive integer path parameter. It writes a 400 and
// returns 0 when the value is not one.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Invalid "+param, c.Param(param))
		return 0
	}
	return uint(id)
}

// identity returns the caller set by middleware.Authenticate
func (h *BaseHandler) identity(c *gin.Context) (uint, models.UserRole, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "No token, authorization denied", nil)
		return 0, "", false
	}
	role, _ := middleware.GetUserRole(c)
	return userID, role, true
}
