// Package security provides input validation, sanitization and session tokens
package security

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

var (
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	eventAttrPattern  = regexp.MustCompile(`(?i)on[a-z]+\s*=\s*["'][^"']*["']`)
	jsURLPattern      = regexp.MustCompile(`(?i)javascript:\s*[^"'\s>]*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ValidationService validates request structs and sanitizes free text
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a validation service with the planner's
// custom tags registered
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New()

	// report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("age_group", validateAgeGroup)
	validate.RegisterValidation("dietary_preference", validateDietaryPreference)
	validate.RegisterValidation("activity_level", validateActivityLevel)
	validate.RegisterValidation("plan_mode", validatePlanMode)
	validate.RegisterValidation("iso_date", validateISODate)

	return &ValidationService{
		logger:    logger,
		validator: validate,
	}
}

// Struct validates s and converts failures into a validation AppError that
// lists every offending field
func (v *ValidationService) Struct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		v.logger.Error("Validator rejected input type", zap.Error(err))
		return apperrors.Wrap(err, "validation could not run")
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// SanitizeText strips markup and script from user supplied text, collapses
// whitespace and truncates to maxLength runes when maxLength > 0
func (v *ValidationService) SanitizeText(input string, maxLength int) string {
	result := scriptPattern.ReplaceAllString(input, "")
	result = eventAttrPattern.ReplaceAllString(result, "")
	result = jsURLPattern.ReplaceAllString(result, "")
	result = tagPattern.ReplaceAllString(result, "")
	result = strings.TrimSpace(whitespacePattern.ReplaceAllString(result, " "))

	if maxLength > 0 {
		if runes := []rune(result); len(runes) > maxLength {
			result = string(runes[:maxLength])
		}
	}
	return result
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "age_group":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(nutrition.AgeGroups))
	case "dietary_preference":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(nutrition.DietaryPreferences))
	case "activity_level":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(nutrition.ActivityLevels))
	case "plan_mode":
		return fmt.Sprintf("%s must be one of %s", field, joinValues(nutrition.PlanModes))
	case "iso_date":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Custom validation functions

func validateAgeGroup(fl validator.FieldLevel) bool {
	return nutrition.AgeGroup(fl.Field().String()).IsValid()
}

func validateDietaryPreference(fl validator.FieldLevel) bool {
	return nutrition.DietaryPreference(fl.Field().String()).IsValid()
}

func validateActivityLevel(fl validator.FieldLevel) bool {
	return nutrition.ActivityLevel(fl.Field().String()).IsValid()
}

func validatePlanMode(fl validator.FieldLevel) bool {
	return nutrition.PlanMode(fl.Field().String()).IsValid()
}

func validateISODate(fl validator.FieldLevel) bool {
	return nutrition.ValidDate(fl.Field().String())
}
