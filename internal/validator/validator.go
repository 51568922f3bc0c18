package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hostelhub/hostel-service/internal/models"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures into ValidationErrors
// so callers get field names as they appear in JSON.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	if converted := ToValidationErrors(err); len(converted) > 0 {
		return converted
	}
	return err
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("issue_status", validateIssueStatus)
	validate.RegisterValidation("issue_priority", validateIssuePriority)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("lost_found_category", validateLostFoundCategory)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// Custom validation functions
func validateIssueStatus(fl validator.FieldLevel) bool {
	return models.IssueStatus(fl.Field().String()).IsValid()
}

// Priority accepts any casing; the service canonicalizes it.
func validateIssuePriority(fl validator.FieldLevel) bool {
	_, ok := models.ParseIssuePriority(fl.Field().String())
	return ok
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).IsValid()
}

func validateLostFoundCategory(fl validator.FieldLevel) bool {
	return models.LostFoundCategory(fl.Field().String()).IsValid()
}
