package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/hostel-service/internal/services"
	"github.com/hostelhub/hostel-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	userService services.UserService
}

func NewStudentHandler(userService services.UserService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// @Router /api/students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.userService.ListStudents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent returns a student with their issue history
// @Router /api/students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	details, err := h.userService.GetStudentDetails(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// @Router /api/students/{id}/deactivate [put]
func (h *StudentHandler) DeactivateStudent(c *gin.Context) {
	actorID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	student, err := h.userService.DeactivateStudent(c.Request.Context(), id, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Student deactivated successfully",
		"student": student,
	})
}
