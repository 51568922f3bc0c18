package services

import (
	"errors"
	"fmt"

	apperrors "github.com/hostelhub/hostel-service/internal/errors"
	"github.com/hostelhub/hostel-service/internal/models"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrForbidden         = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed  = errors.New("validation failed")
	ErrConflict          = errors.New("resource conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPayloadTooLarge   = errors.New("payload too large")

	// Credentials
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid Credentials", ErrUnauthorized)
	ErrEmailTaken         = fmt.Errorf("%w: User already exists", ErrConflict)

	// Entity specific not found errors
	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("%w: student", ErrNotFound)
	ErrIssueNotFound        = fmt.Errorf("%w: issue", ErrNotFound)
	ErrReceiverNotFound     = fmt.Errorf("%w: receiver", ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("%w: message", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)
	ErrItemNotFound         = fmt.Errorf("%w: lost and found item", ErrNotFound)
	ErrAssigneeNotFound     = fmt.Errorf("%w: assignee", ErrNotFound)

	// Issue writes lost an optimistic version race
	ErrIssueConflict = fmt.Errorf("%w: issue was modified concurrently", ErrConflict)
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// TransitionError reports a status change outside the allowed edges
type TransitionError struct {
	From models.IssueStatus `json:"from"`
	To   models.IssueStatus `json:"to"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// singleValidation wraps one field failure as ValidationErrors
func singleValidation(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*NewValidationError(field, message, value)}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
