package validator

import (
	"strings"

	"github.com/hostelhub/hostel-service/internal/errors"
	"github.com/hostelhub/hostel-service/internal/models"
)

const MaxPageSize = 100

// BusinessValidator handles rules that depend on more than one field
type BusinessValidator struct{}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// ValidateRegistration checks the role dependent account fields. Students
// must carry a full residence; other roles may not.
func (v *BusinessValidator) ValidateRegistration(role models.UserRole, hostel, block, room *string) ValidationErrors {
	var errs ValidationErrors

	if role == models.RoleStudent {
		if isBlank(hostel) {
			errs = append(errs, *errors.NewValidationErrorWithRule("hostel_name", "is required for students", "required_for_student", nil))
		}
		if isBlank(block) {
			errs = append(errs, *errors.NewValidationErrorWithRule("block_name", "is required for students", "required_for_student", nil))
		}
		if isBlank(room) {
			errs = append(errs, *errors.NewValidationErrorWithRule("room_number", "is required for students", "required_for_student", nil))
		}
		return errs
	}

	if !isBlank(room) {
		errs = append(errs, *errors.NewValidationErrorWithRule("room_number", "is only allowed for students", "student_only", *room))
	}
	return errs
}

// ValidatePagination rejects negative offsets and oversized pages.
func (v *BusinessValidator) ValidatePagination(limit, offset int) ValidationErrors {
	var errs ValidationErrors
	if limit < 0 || limit > MaxPageSize {
		errs = append(errs, *errors.NewValidationErrorWithRule("limit", "must be between 0 and 100", "max", limit))
	}
	if offset < 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("offset", "must not be negative", "min", offset))
	}
	return errs
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
